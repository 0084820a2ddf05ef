package app

import (
	"context"

	"go.uber.org/zap"

	"blockpad/internal/content"
	"blockpad/internal/editor"
	"blockpad/internal/persist"
	"blockpad/internal/storage"
)

// pageSaver persists a session's content: the local markdown file is
// the source of truth, then the backend is updated when configured.
// Journaled drafts for the page are cleared after a fully successful
// save.
type pageSaver struct {
	store   *content.Store
	client  *persist.Client
	journal *storage.DB
	page    *content.Page
	log     *zap.Logger
}

func (s *pageSaver) Save(ctx context.Context, p editor.SavePayload) error {
	if err := s.store.SavePage(s.page, p.Markdown); err != nil {
		return err
	}
	if s.client != nil {
		var err error
		if p.Page == content.AboutSlug {
			err = s.client.SaveAbout(ctx, p.Markdown, p.Meta)
		} else {
			err = s.client.SaveProject(ctx, p.Page, p.Markdown, p.Meta)
		}
		if err != nil {
			return err
		}
	}
	if err := s.journal.Clear(p.Page); err != nil {
		s.log.Warn("clear drafts failed", zap.String("page", p.Page), zap.Error(err))
	}
	return nil
}
