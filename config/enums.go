package config

//go:generate go tool go-enum --marshal --names --values

// Version of produced EPUB package.
// ENUM(epub2, epub3)
type EpubVersion int

// What to do with intra-book links which cannot be resolved.
// ENUM(fail, inert)
type LinkPolicy int

// Where to put generated table of contents page.
// ENUM(none, before, after)
type TOCPagePlacement int

// OPF returns value for package version attribute.
func (v EpubVersion) OPF() string {
	if v == EpubVersionEpub2 {
		return "2.0"
	}
	return "3.0"
}
