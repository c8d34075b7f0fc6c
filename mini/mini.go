package mini

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/xml"
)

var ErrCloseMiniFile = errors.New("error closing mini file")

const _ReadWrite = 0666

var (
	cdataRe       = regexp.MustCompile(`(?s)<!\[CDATA\[.*?\]\]>`)
	placeholderRe = regexp.MustCompile(`<mini-cdata-([0-9]+)\s*/>`)
)

// Creator can create mini.Files.
type Creator struct {
	mini *minify.M
}

// New returns a new Creator.
func New() *Creator {
	m := minify.New()
	m.Add("text/xml", &xml.Minifier{KeepWhitespace: false})

	return &Creator{mini: m}
}

// File is a regular file whose content is minified on Close if its extension
// is .xml or .rss. Otherwise, it behaves as an ordinary file.
//
// CDATA sections are written back byte for byte; only the markup around them
// is minified.
type File struct {
	file   *os.File
	mini   *minify.M
	buf    *bytes.Buffer
	isMini bool
}

// Create creates a new mini.File, truncating any existing file at path.
func (m *Creator) Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, _ReadWrite)
	if err != nil {
		return nil, fmt.Errorf("could not create mini file %q: %w", path, err)
	}

	if isXML(path) {
		return &File{file: f, mini: m.mini, buf: new(bytes.Buffer), isMini: true}, nil
	}

	return &File{file: f, isMini: false}, nil
}

func (f *File) Write(p []byte) (int, error) {
	if f.isMini {
		return f.buf.Write(p)
	}

	return f.file.Write(p)
}

// Close minifies any buffered XML into the file and closes it.
func (f *File) Close() error {
	var (
		err1 error
		err2 error
	)

	if f.isMini {
		err1 = f.flush()
	}

	err2 = f.file.Close()

	if err1 != nil && err2 != nil {
		return fmt.Errorf("%w: multiple errors: (1) %s; (2) %s", ErrCloseMiniFile, err1.Error(), err2.Error())
	} else if err1 != nil {
		return fmt.Errorf("%w: %s", ErrCloseMiniFile, err1.Error())
	} else if err2 != nil {
		return fmt.Errorf("%w: %s", ErrCloseMiniFile, err2.Error())
	}

	return nil
}

func (f *File) flush() error {
	out, err := minifyXML(f.mini, f.buf.Bytes())
	if err != nil {
		return err
	}

	_, err = f.file.Write(out)

	return err
}

// minifyXML swaps every CDATA section for an empty placeholder element, runs
// the XML minifier over the rest and puts the sections back.
func minifyXML(m *minify.M, src []byte) ([]byte, error) {
	var sections [][]byte

	shielded := cdataRe.ReplaceAllFunc(src, func(s []byte) []byte {
		sections = append(sections, s)
		return []byte("<mini-cdata-" + strconv.Itoa(len(sections)-1) + "/>")
	})

	out, err := m.Bytes("text/xml", shielded)
	if err != nil {
		return nil, err
	}

	var restoreErr error

	out = placeholderRe.ReplaceAllFunc(out, func(s []byte) []byte {
		i, err := strconv.Atoi(string(placeholderRe.FindSubmatch(s)[1]))
		if err != nil || i >= len(sections) {
			restoreErr = fmt.Errorf("unknown cdata placeholder %q", s)
			return s
		}

		return sections[i]
	})
	if restoreErr != nil {
		return nil, restoreErr
	}

	return out, nil
}

func isXML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".rss":
		return true
	default:
		return false
	}
}
