// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"azincms/internal/imaging"
	"azincms/internal/models"
	"azincms/internal/storage"
)

// maxUploadSize is the maximum accepted image size (20 MB).
const maxUploadSize = 20 << 20

// mediaDirs are the key prefixes an upload may be filed under.
var mediaDirs = map[string]bool{
	"articles": true,
	"albums":   true,
	"ads":      true,
	"footer":   true,
}

// UploadedMedia describes a stored image.
type UploadedMedia struct {
	Key string `json:"key"`
	URL string `json:"url"`
	imaging.Info
}

// AlbumImageView is an album image with its public URL.
type AlbumImageView struct {
	models.AlbumImage
	URL string `json:"url"`
}

// readImage parses the multipart form and returns the checked image from
// its "file" field. It writes the error response and returns false on
// failure.
func (a *Admin) readImage(w http.ResponseWriter, r *http.Request) ([]byte, imaging.Info, bool) {
	if a.storage == nil {
		respondError(w, r, http.StatusServiceUnavailable, "object storage is not configured")
		return nil, imaging.Info{}, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, "file too large, maximum size is 20 MB")
		return nil, imaging.Info{}, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "no file provided")
		return nil, imaging.Info{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "failed to read file")
		return nil, imaging.Info{}, false
	}

	info, err := imaging.Inspect(data)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, "image dimensions too large")
		return nil, imaging.Info{}, false
	case err != nil:
		respondError(w, r, http.StatusUnsupportedMediaType, "file must be a JPEG, PNG, GIF or WebP image")
		return nil, imaging.Info{}, false
	}
	return data, info, true
}

// put uploads data under a fresh key in dir.
func (a *Admin) put(ctx context.Context, dir string, data []byte, info imaging.Info) (*UploadedMedia, error) {
	key, err := storage.ImageKey(dir, info.ContentType)
	if err != nil {
		return nil, err
	}
	if err := a.storage.Upload(ctx, key, info.ContentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, err
	}
	return &UploadedMedia{Key: key, URL: a.storage.FileURL(key), Info: info}, nil
}

// deleteObject removes a stored object. Failures are logged only; a row
// that no longer references the object is what matters.
func (a *Admin) deleteObject(ctx context.Context, key string) {
	if a.storage == nil || key == "" {
		return
	}
	if err := a.storage.Delete(ctx, key); err != nil {
		slog.Warn("delete stored object failed", "key", key, "error", err)
	}
}

// UploadMedia stores an image for use as an article cover, ad banner or
// footer icon. The "dir" form field picks the key prefix.
func (a *Admin) UploadMedia(w http.ResponseWriter, r *http.Request) {
	data, info, ok := a.readImage(w, r)
	if !ok {
		return
	}
	dir := strings.TrimSpace(r.FormValue("dir"))
	if dir == "" {
		dir = "articles"
	}
	if !mediaDirs[dir] {
		respondValidation(w, r, errors.New("dir must be articles, albums, ads or footer"))
		return
	}

	m, err := a.put(r.Context(), dir, data, info)
	if err != nil {
		slog.Error("media upload failed", "dir", dir, "error", err)
		respondError(w, r, http.StatusBadGateway, "failed to upload file")
		return
	}
	slog.Info("media uploaded", "key", m.Key, "content_type", m.ContentType, "size", len(data))
	created(w, r, m)
}

// UploadAlbumImage adds an uploaded image to an album. The first image of
// an album without a cover becomes its cover.
func (a *Admin) UploadAlbumImage(w http.ResponseWriter, r *http.Request) {
	album, ok := a.findAlbum(w, r)
	if !ok {
		return
	}
	data, info, ok := a.readImage(w, r)
	if !ok {
		return
	}

	form := AlbumImageForm{Caption: strings.TrimSpace(r.FormValue("caption"))}
	if v := r.FormValue("sort_order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "sort_order must be an integer")
			return
		}
		form.SortOrder = n
	}
	if err := form.Validate(); err != nil {
		respondValidation(w, r, err)
		return
	}

	m, err := a.put(r.Context(), "albums", data, info)
	if err != nil {
		slog.Error("album image upload failed", "album_id", album.ID, "error", err)
		respondError(w, r, http.StatusBadGateway, "failed to upload file")
		return
	}

	img, err := a.albums.AddImage(&models.AlbumImage{
		AlbumID:   album.ID,
		ImageKey:  m.Key,
		Caption:   form.Caption,
		SortOrder: form.SortOrder,
	})
	if err != nil {
		a.deleteObject(r.Context(), m.Key)
		storeFailed(w, r, "add album image", err)
		return
	}
	a.invalidate(r.Context(), "album", album.ID, "add_image")
	created(w, r, AlbumImageView{AlbumImage: *img, URL: m.URL})
}

// DeleteAlbumImage removes an image from an album and from storage.
func (a *Admin) DeleteAlbumImage(w http.ResponseWriter, r *http.Request) {
	albumID, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	imageID, ok := idParam(r, "imageID")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}

	img, err := a.albums.DeleteImage(albumID, imageID)
	if err != nil {
		storeFailed(w, r, "delete album image", err)
		return
	}
	if img == nil {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	a.deleteObject(r.Context(), img.ImageKey)
	a.invalidate(r.Context(), "album", albumID, "delete_image")
	w.WriteHeader(http.StatusNoContent)
}
