package epub

import (
	"archive/zip"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
)

const (
	mimetypeContent = "application/epub+zip"
	oebpsDir        = "OEBPS"
	containerPath   = "META-INF/container.xml"
)

// replaced in tests
var (
	createTemp = os.CreateTemp
	tempWriter = func(f *os.File) io.Writer { return f }
)

type archiveEntry struct {
	name string
	data []byte
}

func containerDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", path.Join(oebpsDir, opfHref))
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")

	doc.Indent(2)
	return doc
}

// writeContainer produces archive in a temporary file next to outputPath and
// renames it into place once complete. Nothing is left behind on failure.
func writeContainer(outputPath string, entries []archiveEntry, modified time.Time, fixZip bool, log *zap.Logger) (err error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ContainerWriteError{Path: outputPath, Err: fmt.Errorf("unable to create output directory: %w", err)}
	}

	f, err := createTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return &ContainerWriteError{Path: outputPath, Err: err}
	}
	tmpName := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = writeArchive(tempWriter(f), entries, modified); err != nil {
		_ = f.Close()
		return &ContainerWriteError{Path: outputPath, Err: err}
	}
	if err = f.Close(); err != nil {
		return &ContainerWriteError{Path: outputPath, Err: fmt.Errorf("unable to finalize output file: %w", err)}
	}

	if fixZip {
		fixed, ferr := rewriteWithoutDataDescriptors(tmpName, dir, outputPath)
		_ = os.Remove(tmpName)
		if ferr != nil {
			err = &ContainerWriteError{Path: outputPath, Err: ferr}
			return err
		}
		tmpName = fixed
		log.Debug("Archive rewritten without data descriptors", zap.String("output", outputPath))
	}

	if err = os.Rename(tmpName, outputPath); err != nil {
		return &ContainerWriteError{Path: outputPath, Err: err}
	}
	return nil
}

// writeArchive puts uncompressed mimetype first, everything else follows in
// the given order.
func writeArchive(w io.Writer, entries []archiveEntry, modified time.Time) error {
	zw := zip.NewWriter(w)
	if err := writeMimetype(zw, modified); err != nil {
		return fmt.Errorf("unable to write mimetype: %w", err)
	}
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("unable to add %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return fmt.Errorf("unable to write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	return nil
}

// writeMimetype uses raw entry with sizes known upfront so no data
// descriptor follows it. Raw entries get no extra fields, content starts at
// offset 38.
func writeMimetype(zw *zip.Writer, modified time.Time) error {
	data := []byte(mimetypeContent)
	date, tm := msDosTime(modified)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "mimetype",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: uint64(len(data)),
		ModifiedDate:       date,
		ModifiedTime:       tm,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// msDosTime is what CreateHeader does with Modified, CreateRaw leaves
// timestamp fields as they are.
func msDosTime(t time.Time) (date, tm uint16) {
	if t.Year() < 1980 {
		t = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	date = uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	tm = uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return date, tm
}

// rewriteWithoutDataDescriptors copies archive clearing data descriptor flags,
// some readers do not handle them.
func rewriteWithoutDataDescriptors(from, dir, outputPath string) (string, error) {
	out, err := createTemp(dir, "."+filepath.Base(outputPath)+".*.fix")
	if err != nil {
		return "", err
	}
	name := out.Name()
	if err := copyWithoutDataDescriptors(from, tempWriter(out)); err != nil {
		_ = out.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("unable to write target file (%s): %w", name, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

func copyWithoutDataDescriptors(from string, to io.Writer) error {
	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(to)
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return err
		}
	}
	return w.Close()
}
