package project

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Info holds the identifying fields of xproject/project.xml.
type Info struct {
	XMLName xml.Name `xml:"http://expath.org/ns/project project"`
	Name    string   `xml:"name,attr"`
	Abbrev  string   `xml:"abbrev,attr"`
	Version string   `xml:"version,attr"`
	Title   string   `xml:"http://expath.org/ns/project title"`
}

// ReadInfo parses the project descriptor.
func (r *Root) ReadInfo() (Info, error) {
	data, err := os.ReadFile(r.Descriptor)
	if err != nil {
		return Info{}, err
	}

	var info Info
	if err := xml.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("invalid project descriptor %s: %w", r.Descriptor, err)
	}
	info.Title = strings.TrimSpace(info.Title)
	return info, nil
}

// descriptorTemplate is written by Scaffold; the [[ ]] markers are meant to
// be edited by hand.
const descriptorTemplate = `<project xmlns="` + Namespace + `"
         name="[[ http://example.org/your/project/name ]]"
         abbrev="[[ your-project ]]"
         version="[[ 0.1.0 ]]">

   <title>[[ Short description of your project ]]</title>

</project>
`

// Scaffold creates a new project without running the setup pipeline:
// dir/, dir/src/, dir/xproject/ and a descriptor template. dir must not
// exist yet.
func Scaffold(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if _, err := os.Stat(abs); err == nil {
		return nil, fmt.Errorf("directory exists: %s", abs)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	for _, d := range []string{abs, filepath.Join(abs, SourceDir), filepath.Join(abs, PrivateDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("error creating directory %s: %w", d, err)
		}
	}

	desc := filepath.Join(abs, PrivateDir, Descriptor)
	if err := os.WriteFile(desc, []byte(descriptorTemplate), 0o644); err != nil {
		return nil, fmt.Errorf("error writing the project descriptor %s: %w", desc, err)
	}

	return Open(abs)
}
