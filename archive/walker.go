// Package archive walks and inspects EPUB containers.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
)

const (
	mimetypeName    = "mimetype"
	mimetypeContent = "application/epub+zip"
	containerName   = "META-INF/container.xml"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(file *zip.File) error

// Walk visits files of the archive which names start with prefix in archive
// order. Entries with path traversal components ("..") or absolute paths
// stop the walk.
func Walk(r *zip.Reader, prefix string, walkFn WalkFunc) error {
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// Entry describes single archive member.
type Entry struct {
	Name           string
	Method         uint16
	Size           uint64
	Compressed     uint64
	DataDescriptor bool
}

// Summary is result of container inspection. Problems are violations of
// container layout, they do not prevent inspection from completing.
type Summary struct {
	Entries  []Entry
	RootFile string
	Problems []string
}

func (s *Summary) problem(format string, args ...any) {
	s.Problems = append(s.Problems, fmt.Sprintf(format, args...))
}

// Inspect opens EPUB and checks that mimetype entry comes first uncompressed,
// container points to existing package document and every manifest item is
// present.
func Inspect(name string) (*Summary, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive: %w", err)
	}
	defer rc.Close()

	s := &Summary{}
	files := make(map[string]*zip.File, len(rc.File))
	err = Walk(&rc.Reader, "", func(f *zip.File) error {
		s.Entries = append(s.Entries, Entry{
			Name:           f.Name,
			Method:         f.Method,
			Size:           f.UncompressedSize64,
			Compressed:     f.CompressedSize64,
			DataDescriptor: f.Flags&0x8 != 0,
		})
		files[f.Name] = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := checkMimetype(s, rc.File); err != nil {
		return nil, err
	}
	if err := checkPackage(s, files); err != nil {
		return nil, err
	}
	return s, nil
}

func checkMimetype(s *Summary, files []*zip.File) error {
	if len(files) == 0 || files[0].Name != mimetypeName {
		s.problem("first entry is not %s", mimetypeName)
		return nil
	}
	f := files[0]
	if f.Method != zip.Store {
		s.problem("%s is compressed", mimetypeName)
	}
	if len(f.Extra) > 0 {
		s.problem("%s has extra field", mimetypeName)
	}
	data, err := readFile(f)
	if err != nil {
		return err
	}
	if string(data) != mimetypeContent {
		s.problem("%s content is %q", mimetypeName, data)
	}
	return nil
}

func checkPackage(s *Summary, files map[string]*zip.File) error {
	f, ok := files[containerName]
	if !ok {
		s.problem("no %s", containerName)
		return nil
	}
	container, err := readDocument(f)
	if err != nil {
		s.problem("bad %s: %v", containerName, err)
		return nil
	}
	rootfile := container.FindElement("//rootfile")
	if rootfile == nil {
		s.problem("%s has no rootfile", containerName)
		return nil
	}
	s.RootFile = rootfile.SelectAttrValue("full-path", "")

	opf, ok := files[s.RootFile]
	if !ok {
		s.problem("package document %q is missing", s.RootFile)
		return nil
	}
	doc, err := readDocument(opf)
	if err != nil {
		s.problem("bad package document: %v", err)
		return nil
	}
	dir := path.Dir(s.RootFile)
	for _, item := range doc.FindElements("//manifest/item") {
		href, err := url.PathUnescape(item.SelectAttrValue("href", ""))
		if err != nil {
			s.problem("manifest item %q has bad href: %v", item.SelectAttrValue("id", ""), err)
			continue
		}
		if _, ok := files[path.Join(dir, href)]; !ok {
			s.problem("manifest item %q (%s) is not in archive", item.SelectAttrValue("id", ""), href)
		}
	}
	return nil
}

func readFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", f.Name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", f.Name, err)
	}
	return data, nil
}

func readDocument(f *zip.File) (*etree.Document, error) {
	data, err := readFile(f)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return doc, nil
}
