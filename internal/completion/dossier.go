package completion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/notifications"
	"buyer-portal/buyer-portal-backend/internal/onboarding"
	"buyer-portal/buyer-portal-backend/pkg/storage"
)

// Renderer encodes a wizard view as a downloadable summary
type Renderer interface {
	ContentType(format string) (mime, ext string, ok bool)
	Render(format string, view onboarding.View) ([]byte, error)
}

// Notifier tells the buyer that onboarding finished
type Notifier interface {
	SendCompletion(ctx context.Context, n notifications.CompletionNotice) (*notifications.Delivery, error)
}

// Archived is one stored summary file
type Archived struct {
	Format string
	Key    string
	URL    string
}

// Config controls where summaries go and how long their links live
type Config struct {
	Bucket    string
	KeyPrefix string
	Formats   []string
	LinkTTL   time.Duration
}

// DefaultConfig archives PDF and XLSX summaries under "onboarding/"
func DefaultConfig(bucket string) Config {
	return Config{
		Bucket:    bucket,
		KeyPrefix: "onboarding",
		Formats:   []string{"pdf", "xlsx"},
		LinkTTL:   7 * 24 * time.Hour,
	}
}

// Dossier renders, archives and announces the summary of a completed session
type Dossier struct {
	cfg      Config
	renderer Renderer
	archive  storage.S3Client
	notifier Notifier
	logger   *zap.Logger
}

// NewDossier creates a dossier hook. notifier may be nil.
func NewDossier(cfg Config, renderer Renderer, archive storage.S3Client, notifier Notifier, logger *zap.Logger) *Dossier {
	return &Dossier{
		cfg:      cfg,
		renderer: renderer,
		archive:  archive,
		notifier: notifier,
		logger:   logger,
	}
}

// Hook is an onboarding.CompletionHook
func (d *Dossier) Hook(ctx context.Context, c onboarding.Completion) error {
	archived, err := d.Archive(ctx, c)

	if d.notifier == nil {
		return err
	}
	notice, ok := noticeFor(c, archived)
	if !ok {
		d.logger.Warn("No contact email for completed session", zap.String("session", c.Key))
		return err
	}
	if _, sendErr := d.notifier.SendCompletion(ctx, notice); sendErr != nil {
		err = errors.Join(err, fmt.Errorf("send completion email: %w", sendErr))
	}
	return err
}

// Archive uploads one summary per configured format. Formats that fail are
// skipped and reported together; the rest are still archived.
func (d *Dossier) Archive(ctx context.Context, c onboarding.Completion) ([]Archived, error) {
	view := onboarding.View{
		Key:       c.Key,
		Steps:     onboarding.BuyerSteps(),
		Data:      c.Data,
		Completed: true,
	}

	var (
		out  []Archived
		errs []error
	)
	for _, format := range d.cfg.Formats {
		mime, ext, ok := d.renderer.ContentType(format)
		if !ok {
			errs = append(errs, fmt.Errorf("unsupported summary format %q", format))
			continue
		}
		content, err := d.renderer.Render(format, view)
		if err != nil {
			errs = append(errs, fmt.Errorf("render %s summary: %w", format, err))
			continue
		}

		key := d.objectKey(c, ext)
		if err := d.archive.Upload(ctx, d.cfg.Bucket, key, mime, bytes.NewReader(content)); err != nil {
			errs = append(errs, err)
			continue
		}

		link, err := d.archive.GetPresignedURL(ctx, d.cfg.Bucket, key, d.cfg.LinkTTL)
		if err != nil {
			d.logger.Warn("Failed to presign summary link", zap.String("key", key), zap.Error(err))
		}
		out = append(out, Archived{Format: format, Key: key, URL: link})
		d.logger.Info("Summary archived",
			zap.String("session", c.Key),
			zap.String("bucket", d.cfg.Bucket),
			zap.String("key", key),
			zap.Int("bytes", len(content)),
		)
	}
	return out, errors.Join(errs...)
}

func (d *Dossier) objectKey(c onboarding.Completion, ext string) string {
	stamp := c.CompletedAt.UTC().Format("20060102T150405Z")
	parts := []string{c.BuyerID.String(), stamp + "-summary." + ext}
	if prefix := strings.Trim(d.cfg.KeyPrefix, "/"); prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

func noticeFor(c onboarding.Completion, archived []Archived) (notifications.CompletionNotice, bool) {
	inquiry := c.Data.InitialInquiry
	if inquiry == nil || inquiry.Contact.Email == "" {
		return notifications.CompletionNotice{}, false
	}
	n := notifications.CompletionNotice{
		To:           inquiry.Contact.Email,
		ContactName:  inquiry.Contact.Name,
		Organisation: inquiry.OrganisationName,
		CompletedAt:  c.CompletedAt,
	}
	for _, a := range archived {
		if a.URL == "" {
			continue
		}
		n.Links = append(n.Links, notifications.DossierLink{
			Label: "Onboarding summary (" + strings.ToUpper(a.Format) + ")",
			URL:   a.URL,
		})
	}
	return n, true
}
