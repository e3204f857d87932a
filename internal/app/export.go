package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"eduai/pkg/domain"
	"eduai/pkg/office"
)

// ExportResult reports a finished office export.
type ExportResult struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	Message     string `json:"message"`
}

const msgExported = "Fișierul a fost generat și salvat cu succes!"

// ExportMaterial renders a persisted material as an Office document,
// uploads it, and records the download URL on the material. Presentations
// become PPTX; every other kind is rendered as DOCX. A failure to record
// the URL leaves the uploaded object orphaned; that is accepted and logged.
func (a *App) ExportMaterial(ctx context.Context, token, materialID string) (ExportResult, error) {
	user, err := a.userFromToken(token)
	if err != nil {
		return ExportResult{}, err
	}
	if a.objects == nil {
		return ExportResult{}, fmt.Errorf("%w: stocarea de fișiere nu este configurată", ErrExportStorage)
	}
	material, ok, err := a.store.GetMaterial(materialID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("get material: %w", err)
	}
	if !ok {
		return ExportResult{}, ErrMaterialNotFound
	}
	if material.UserID != user.ID && !user.IsAdmin() {
		return ExportResult{}, ErrForbidden
	}

	var (
		data        []byte
		ext         string
		contentType string
	)
	if material.Kind == domain.KindPresentation {
		data, err = office.BuildPptx(material)
		ext, contentType = "pptx", office.MIMEPptx
	} else {
		data, err = office.BuildDocx(material)
		ext, contentType = "docx", office.MIMEDocx
	}
	if err != nil {
		return ExportResult{}, fmt.Errorf("render %s: %w", ext, err)
	}

	key := fmt.Sprintf("%s/%s.%s", material.UserID, material.ID, ext)
	if err := a.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return ExportResult{}, fmt.Errorf("%w: %v", ErrExportStorage, err)
	}
	url, err := a.objects.DownloadURL(ctx, key)
	if err != nil {
		return ExportResult{}, fmt.Errorf("%w: %v", ErrExportStorage, err)
	}
	if err := a.store.SetDownloadURL(material.ID, url); err != nil {
		slog.Error("download url update failed, object orphaned", "material_id", material.ID, "key", key, "err", err)
		return ExportResult{}, fmt.Errorf("%w: %v", ErrExportMetadata, err)
	}

	return ExportResult{
		DownloadURL: url,
		FileName:    fmt.Sprintf("%s.%s", material.ID, ext),
		Message:     msgExported,
	}, nil
}
