package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"mdepub/book"
	"mdepub/config"
)

const (
	defaultNameTemplate = "{{ .Title }}"
	outputExt           = ".epub"
)

// buildOutputPath returns constructed output file path/name. It uses either
// default naming scheme (book title) or user-defined template which may
// produce subdirectories. It cleans up path and if requested transliterates
// it.
func buildOutputPath(cfg *book.Config, dst string, doc *config.DocumentConfig, log *zap.Logger) string {
	field := doc.OutputNameTemplate
	if field == "" {
		field = defaultNameTemplate
	}

	expandedName, err := expandTemplate(cfg, config.OutputNameTemplateFieldName, field, doc.EpubVersion)
	if err != nil {
		log.Warn("Unable to prepare output filename", zap.Error(err))
		expandedName = ""
	}
	expandedName = strings.TrimSpace(filepath.FromSlash(expandedName))
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(dst, cleanPathSegment(bookTitle(cfg), doc)+outputExt)
	}
	return assemblePathWithSubdirs(dst, expandedName, doc)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, doc *config.DocumentConfig) string {
	pathSegments := splitAndCleanPath(expandedName)

	if len(pathSegments) == 0 {
		return filepath.Join(outDir, cleanPathSegment("", doc)+outputExt)
	}

	fileName := strings.TrimSuffix(pathSegments[len(pathSegments)-1], outputExt)
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		if segment == "." || segment == ".." {
			continue
		}
		dirParts = append(dirParts, cleanPathSegment(segment, doc))
	}

	dirParts = append(dirParts, cleanPathSegment(fileName, doc)+outputExt)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}

	return segments
}

func cleanPathSegment(segment string, doc *config.DocumentConfig) string {
	if doc.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
