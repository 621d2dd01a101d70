package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Its-donkey/newsdesk/internal/ui/api"
	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/preview"
)

// RefreshPreview requests a preview of the current document. Stale results are
// dropped; failures appear inline in the preview rather than as a notice.
func (s *Session) RefreshPreview(ctx context.Context) preview.Result {
	doc := s.store.Document()
	cfg := s.Config()
	eph := s.Ephemeral()

	res, err := s.preview.Request(ctx, doc, cfg, eph)
	if res.Stale {
		s.logger.Debug("preview", "discarded stale preview", map[string]any{"generation": res.Generation})
		return res
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.resetAuth()
			return res
		}
		s.logger.Warn("preview", "preview request failed", map[string]any{"error": err.Error(), "generation": res.Generation})
	}
	return s.publishPreview(res)
}

// publishPreview stores res and notifies the frontend unless a newer generation was
// already published. The check, the write and the hook run under publishMu so results
// reach the frontend in generation order.
func (s *Session) publishPreview(res preview.Result) preview.Result {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if res.Generation <= s.previewGen {
		s.mu.Unlock()
		s.logger.Debug("preview", "discarded stale preview", map[string]any{"generation": res.Generation})
		return preview.Result{Generation: res.Generation, Stale: true}
	}
	s.previewGen = res.Generation
	s.previewHTML = res.HTML
	s.mu.Unlock()

	if s.hooks.Preview != nil {
		s.hooks.Preview(res)
	}
	return res
}

// PreviewHTML returns the last applied preview markup.
func (s *Session) PreviewHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previewHTML
}

// GenerateFinal renders the email for sending. It refuses while news_stories is empty.
func (s *Session) GenerateFinal(ctx context.Context) (string, error) {
	doc := s.store.Document()
	if len(doc.NewsStories) == 0 {
		s.notifier.Notify(preview.NoStoriesMessage, model.ToneWarning)
		return "", invalid(preview.NoStoriesMessage)
	}
	req := model.BuildGenerateRequest(doc, s.Config(), s.Ephemeral(), s.now())
	markup, err := s.backend.GenerateEmail(ctx, req)
	if err != nil {
		return "", s.fail("generate email", err)
	}
	s.mu.Lock()
	s.finalHTML = markup
	s.mu.Unlock()
	if summary, err := preview.Inspect(markup); err == nil {
		s.logger.Info("session", "generated email", map[string]any{
			"email_type": req.EmailType,
			"links":      summary.Links,
			"images":     summary.Images,
			"empty":      summary.EmptyLinks,
		})
	}
	s.notifier.Notify("Email generated successfully!", model.ToneSuccess)
	return markup, nil
}

// FinalHTML returns the last generated email.
func (s *Session) FinalHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalHTML
}

// DownloadName is the file name offered for the generated email.
func (s *Session) DownloadName() string {
	return fmt.Sprintf("%s-email-%s.html", s.EmailType(), s.now().Format("2006-01-02"))
}

// Download writes the generated email to w and returns the suggested file name.
func (s *Session) Download(w io.Writer) (string, error) {
	markup := s.FinalHTML()
	if markup == "" {
		return "", invalid("Generate the email before downloading it")
	}
	if _, err := io.WriteString(w, markup); err != nil {
		return "", fmt.Errorf("write email: %w", err)
	}
	return s.DownloadName(), nil
}
