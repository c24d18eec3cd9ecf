package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/satglobe/internal/catalog"
)

const etagCap = 64

// TextureInfo describes a globe texture available to the viewer.
type TextureInfo struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Night bool   `json:"night"`
}

// HandleCountries serves the observer presets.
func (s *ServerContext) HandleCountries(w http.ResponseWriter, _ *http.Request) {
	countries := s.Countries
	if countries == nil {
		countries = []catalog.Country{}
	}
	writeJSON(w, countries)
}

// HandleTextureList serves the configured textures that the loader has produced.
func (s *ServerContext) HandleTextureList(w http.ResponseWriter, _ *http.Request) {
	list := make([]TextureInfo, 0, len(s.Config.Textures))
	for _, t := range s.Config.Textures {
		if info, err := os.Stat(s.texturePath(t.Name)); err != nil || info.IsDir() {
			continue
		}
		list = append(list, TextureInfo{Name: t.Name, URL: "/textures/" + t.Name + ".webp", Night: t.Night})
	}
	writeJSON(w, list)
}

// HandleTexture serves /textures/{name}.webp from the texture directory.
// Only configured texture names are served.
func (s *ServerContext) HandleTexture(w http.ResponseWriter, r *http.Request) {
	file := strings.TrimPrefix(r.URL.Path, "/textures/")
	name, ok := strings.CutSuffix(file, ".webp")
	if !ok || strings.ContainsAny(name, `/\`) {
		http.NotFound(w, r)
		return
	}

	// only configured textures, never arbitrary files
	if _, known := s.Config.Texture(name); !known {
		http.NotFound(w, r)
		return
	}

	if !s.serveFile(w, r, s.texturePath(name), "image/webp") {
		http.NotFound(w, r)
	}
}

func (s *ServerContext) texturePath(name string) string {
	return filepath.Join(s.Config.TextureDir, name+".webp")
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
