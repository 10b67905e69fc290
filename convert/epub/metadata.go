package epub

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"mdepub/book"
)

const (
	uuidURNPrefix = "urn:uuid:"
	sourceDateEnv = "SOURCE_DATE_EPOCH"
)

// replaced in tests
var now = time.Now

// PackageMetadata is book level information written to package document and
// navigation files.
type PackageMetadata struct {
	Title       string
	Language    string
	Identifier  string
	Authors     []string
	Description string
	Modified    time.Time
}

// BuildMetadata derives package metadata from book configuration. Title
// falls back to the book root directory name, language to defaultLang.
func BuildMetadata(cfg *book.Config, defaultLang string) (*PackageMetadata, error) {
	md := &PackageMetadata{
		Title:       strings.TrimSpace(cfg.Title),
		Description: strings.TrimSpace(cfg.Description),
	}

	if len(md.Title) == 0 && len(cfg.Root) > 0 {
		if base := filepath.Base(cfg.Root); base != "." && base != string(filepath.Separator) {
			md.Title = base
		}
	}
	if len(md.Title) == 0 {
		return nil, &MetadataError{Field: "title", Reason: "book has no title and it cannot be derived"}
	}

	lang := strings.TrimSpace(cfg.Language)
	if len(lang) == 0 {
		lang = defaultLang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, &MetadataError{Field: "language", Reason: err.Error()}
	}
	md.Language = tag.String()

	for _, a := range cfg.Authors {
		if a = strings.TrimSpace(a); len(a) > 0 {
			md.Authors = append(md.Authors, a)
		}
	}

	if md.Identifier, err = identifier(cfg.Epub.Identifier); err != nil {
		return nil, &MetadataError{Field: "identifier", Reason: err.Error()}
	}
	if md.Modified, err = modified(); err != nil {
		return nil, &MetadataError{Field: "modified", Reason: err.Error()}
	}
	return md, nil
}

// identifier keeps explicit value, bare UUID is turned into URN. Without
// explicit value new time ordered UUID is generated.
func identifier(explicit string) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if len(explicit) == 0 {
		u, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		return uuidURNPrefix + u.String(), nil
	}
	if !strings.HasPrefix(strings.ToLower(explicit), uuidURNPrefix) {
		if u, err := uuid.Parse(explicit); err == nil {
			return uuidURNPrefix + u.String(), nil
		}
	}
	return explicit, nil
}

// modified honours SOURCE_DATE_EPOCH so builds could be reproduced.
func modified() (time.Time, error) {
	if v := strings.TrimSpace(os.Getenv(sourceDateEnv)); len(v) > 0 {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(sec, 0).UTC(), nil
	}
	return now().UTC().Truncate(time.Second), nil
}

// ModifiedString is timestamp format dcterms:modified requires.
func (md *PackageMetadata) ModifiedString() string {
	return md.Modified.Format("2006-01-02T15:04:05Z")
}
