package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Vladislav-Dmitriev/well-net/pkg/pvt"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// File names looked up in a project directory. Only project.yaml is
// required.
const (
	ProjectFile  = "project.yaml"
	WellsFile    = "wells.yaml"
	ContoursFile = "contours.yaml"
	PVTFile      = "pvt.yaml"
)

// Load reads a project document from a YAML file. Missing parameter keys
// keep their defaults.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a project document from YAML.
func Parse(data []byte) (*Document, error) {
	doc := NewDocument()
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing project YAML: %w", err)
	}
	return doc, nil
}

// LoadProject loads a project directory: project.yaml plus the optional
// wells.yaml, contours.yaml and pvt.yaml next to it. Records from
// wells.yaml are appended to any listed inline.
func LoadProject(projectDir string) (*Document, error) {
	doc, err := Load(filepath.Join(projectDir, ProjectFile))
	if err != nil {
		return nil, err
	}

	var wells struct {
		Wells []well.Record `yaml:"wells"`
	}
	if ok, err := readOptional(filepath.Join(projectDir, WellsFile), &wells); err != nil {
		return nil, err
	} else if ok {
		doc.Wells = append(doc.Wells, wells.Wells...)
	}

	var contours struct {
		Contours []Contour `yaml:"contours"`
	}
	if ok, err := readOptional(filepath.Join(projectDir, ContoursFile), &contours); err != nil {
		return nil, err
	} else if ok {
		doc.Contours = append(doc.Contours, contours.Contours...)
	}

	pvtPath := filepath.Join(projectDir, PVTFile)
	if _, err := os.Stat(pvtPath); err == nil {
		table, err := pvt.LoadTable(pvtPath)
		if err != nil {
			return nil, err
		}
		doc.PVT = table
	}
	return doc, nil
}

func readOptional(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// Build validates a document and classifies its wells. The project is nil
// when the report has errors.
func Build(doc *Document) (*Project, *validation.Report) {
	r := ValidateSchema(doc)
	if !r.Valid {
		return nil, r
	}

	p := &Project{
		Name:       doc.Name,
		Parameters: doc.Parameters,
		Contours:   doc.Contours,
	}
	for i, rec := range doc.Wells {
		w, err := well.Classify(rec, doc.Parameters.MinHorizontalLength)
		if err != nil {
			r.AddError(validation.Result{
				Level:   validation.LevelSchema,
				Message: err.Error(),
				Path:    fmt.Sprintf("wells[%d]", i),
			})
			continue
		}
		if len(w.Horizons) == 0 {
			r.AddWarning(validation.Result{
				Level:   validation.LevelSchema,
				Message: fmt.Sprintf("well %s works no horizon and is ignored", w.Name),
				Path:    fmt.Sprintf("wells[%d].horizon", i),
			})
			continue
		}
		p.Wells = append(p.Wells, w)
	}
	if !r.Valid {
		return nil, r
	}

	switch {
	case doc.PVT != nil:
		table := *doc.PVT
		if table.Default == 0 {
			table.Default = doc.Parameters.TimeCoefficientDefault
		}
		p.PVT = &table
	default:
		p.PVT = &pvt.Table{Default: doc.Parameters.TimeCoefficientDefault}
	}

	r.AddInfo(validation.Result{
		Level: validation.LevelSchema,
		Message: fmt.Sprintf("%d wells on %d horizons, %d contours",
			len(p.Wells), len(p.Horizons()), len(p.EffectiveContours())),
	})
	return p, r
}

// LoadAndBuild loads a project directory and builds it.
func LoadAndBuild(projectDir string) (*Project, *validation.Report, error) {
	doc, err := LoadProject(projectDir)
	if err != nil {
		return nil, nil, err
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(projectDir), string(filepath.Separator))
	}
	p, r := Build(doc)
	return p, r, nil
}
