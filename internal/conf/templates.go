package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"slack-wa-relay/internal/biz/domain"
)

// templatesFile mirrors domain.Format for YAML loading
type templatesFile struct {
	Header            string `yaml:"header"`
	UnknownSender     string `yaml:"unknown_sender"`
	DigestLine        string `yaml:"digest_line"`
	DigestAttachments string `yaml:"digest_attachments"`
	DigestLast        string `yaml:"digest_last"`
	TimeLayout        string `yaml:"time_layout"`
}

// LoadFormat loads message wording templates from a YAML file, falling back
// to defaults for any field left empty. An empty configPath searches the
// usual locations; defaults are returned when no file is found.
func LoadFormat(configPath string) (domain.Format, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/templates.yaml",
			"./configs/templates.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "templates.yaml"))
		}
	}

	var data []byte
	for _, p := range paths {
		if p == "" {
			continue
		}
		if read, err := os.ReadFile(p); err == nil {
			data = read
			break
		}
	}

	format := domain.DefaultFormat()
	if data == nil {
		return format, nil
	}

	var file templatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return format, fmt.Errorf("failed to parse templates.yaml: %w", err)
	}

	if file.Header != "" {
		format.Header = file.Header
	}
	if file.UnknownSender != "" {
		format.UnknownSender = file.UnknownSender
	}
	if file.DigestLine != "" {
		format.DigestLine = file.DigestLine
	}
	if file.DigestAttachments != "" {
		format.DigestAttachments = file.DigestAttachments
	}
	if file.DigestLast != "" {
		format.DigestLast = file.DigestLast
	}
	if file.TimeLayout != "" {
		format.TimeLayout = file.TimeLayout
	}
	return format, nil
}
