// Package storage keeps uploaded memory attachments.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned by Open when no file with that name exists.
var ErrNotFound = errors.New("file not found")

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/uploads/"

// AllowedExtensions lists the attachment types accepted for memories.
var AllowedExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {},
	"mp4": {}, "mov": {}, "avi": {},
	"mp3": {}, "wav": {}, "m4a": {},
}

// Store saves and reads attachment files by base name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// AllowedFile reports whether filename has an allowed extension, compared case-insensitively.
func AllowedFile(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := AllowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces filename to a safe ASCII base name. It may return "".
//
//	"My cool movie.mov"     -> "My_cool_movie.mov"
//	"../../../etc/passwd"   -> "etc_passwd"
//	"i contain cool ümläuts.txt" -> "i_contain_cool_umlauts.txt"
func SanitizeFilename(filename string) string {
	filename = norm.NFKD.String(filename)

	var b strings.Builder
	for _, r := range filename {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	joined := strings.Join(strings.Fields(b.String()), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}

// PublicPath returns the URL path recorded for a stored file.
func PublicPath(name string) string {
	return PublicPrefix + name
}

// validName reports whether name is a plain base name that stays inside the store.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return path.Base(name) == name
}
