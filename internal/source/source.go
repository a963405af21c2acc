// Package source loads the images handed to the analysis: image files and
// raster pages of PDF documents.
package source

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/gen2brain/go-fitz"
)

type Source interface {
	PageCount() int
	PageName(index int) string
	// PageSize returns the pixel dimensions RenderPage will produce.
	PageSize(index int, dpi int) (width, height int, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks the source implementation from the path: PDF documents go to
// FitzPDFSource, everything else to ImageSource.
func Open(path string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// PageName returns "path#N" with the 1-based page number.
func (f *FitzPDFSource) PageName(index int) string {
	return fmt.Sprintf("%s#%d", f.path, index+1)
}

func (f *FitzPDFSource) PageSize(index int, dpi int) (int, int, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	// Bound is in points (1/72 inch)
	scale := float64(dpi) / 72
	w := int(math.Ceil(float64(rect.Dx()) * scale))
	h := int(math.Ceil(float64(rect.Dy()) * scale))
	return w, h, nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	// Отдельный документ на вызов: fitz.Document не потокобезопасен
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
