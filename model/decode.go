package model

import (
	"errors"
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v3"
)

type annotationDoc struct {
	Start       int    `yaml:"start"`
	End         int    `yaml:"end"`
	Tag         string `yaml:"tag"`
	Destination string `yaml:"destination,omitempty"`
	Key         string `yaml:"key,omitempty"`
}

type paragraphDoc struct {
	Text        string          `yaml:"text"`
	Annotations []annotationDoc `yaml:"annotations,omitempty"`
}

type documentDoc struct {
	Paragraphs []paragraphDoc `yaml:"paragraphs"`
}

// Decode reads YAML document with list of paragraphs as produced by an
// external converter:
//
//	paragraphs:
//	  - text: "see docs"
//	    annotations:
//	      - {start: 4, end: 8, tag: link, destination: "https://example.com"}
func Decode(r io.Reader) ([]*RichText, error) {
	// Only known fields are accepted, typo in tag payload name must not be
	// silently dropped
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc documentDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode rich text document: %w", err)
	}

	result := make([]*RichText, 0, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		annotations := make([]Annotation, 0, len(p.Annotations))
		for j, a := range p.Annotations {
			kind, ok := ParseTagKind(a.Tag)
			if !ok {
				return nil, fmt.Errorf("paragraph %d, annotation %d: unknown tag %q", i, j, a.Tag)
			}
			annotations = append(annotations, Annotation{
				Range: Range{Start: a.Start, End: a.End},
				Tag:   Tag{Kind: kind, Destination: a.Destination, Key: a.Key},
			})
		}
		rt, err := New(p.Text, annotations...)
		if err != nil {
			return nil, fmt.Errorf("paragraph %d: %w", i, err)
		}
		result = append(result, rt)
	}
	return result, nil
}

// Encode is the reverse of Decode.
func Encode(w io.Writer, paragraphs ...*RichText) error {
	doc := documentDoc{Paragraphs: make([]paragraphDoc, 0, len(paragraphs))}
	for _, rt := range paragraphs {
		p := paragraphDoc{Text: rt.text}
		for _, a := range rt.annotations {
			p.Annotations = append(p.Annotations, annotationDoc{
				Start:       a.Start,
				End:         a.End,
				Tag:         a.Tag.Kind.String(),
				Destination: a.Tag.Destination,
				Key:         a.Tag.Key,
			})
		}
		doc.Paragraphs = append(doc.Paragraphs, p)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode rich text document: %w", err)
	}
	return enc.Close()
}
