package aws

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Profile is a named profile from the shared AWS config or credentials file
type Profile struct {
	Name   string
	Region string // from the config file if set
	Source string // "credentials" or "config"
}

// sharedFiles returns the shared config and credentials paths, honouring
// AWS_CONFIG_FILE and AWS_SHARED_CREDENTIALS_FILE
func sharedFiles() (configFile, credentialsFile string) {
	configFile = os.Getenv("AWS_CONFIG_FILE")
	credentialsFile = os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if configFile != "" && credentialsFile != "" {
		return configFile, credentialsFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return configFile, credentialsFile
	}
	if configFile == "" {
		configFile = filepath.Join(home, ".aws", "config")
	}
	if credentialsFile == "" {
		credentialsFile = filepath.Join(home, ".aws", "credentials")
	}
	return configFile, credentialsFile
}

// LookupProfile finds name in the shared files. A region set in the config
// file wins over one only present in credentials.
func LookupProfile(name string) (Profile, bool) {
	configFile, credentialsFile := sharedFiles()

	var found Profile
	ok := false
	for _, f := range []struct {
		path   string
		source string
	}{
		{credentialsFile, "credentials"},
		{configFile, "config"},
	} {
		p, err := findProfile(f.path, f.source, name)
		if err != nil || p == nil {
			continue
		}
		if !ok {
			found, ok = *p, true
		} else if p.Region != "" {
			found.Region = p.Region
		}
	}
	return found, ok
}

// CheckProfile returns an error when a named profile is not configured. An
// empty name means the default credential chain and always passes.
func CheckProfile(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := LookupProfile(name); !ok {
		return fmt.Errorf("AWS profile %q not found in the shared config or credentials file", name)
	}
	return nil
}

// findProfile scans one INI file for the section of name. The config file
// names sections "profile <name>" except for default.
func findProfile(path, source, name string) (*Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var current *Profile
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if current != nil {
				return current, nil
			}
			section := strings.TrimSpace(line[1 : len(line)-1])
			if source == "config" && section != "default" {
				after, isProfile := strings.CutPrefix(section, "profile ")
				if !isProfile {
					continue
				}
				section = strings.TrimSpace(after)
			}
			if section == name {
				current = &Profile{Name: name, Source: source}
			}
			continue
		}

		if current != nil {
			key, value, ok := strings.Cut(line, "=")
			if ok && strings.TrimSpace(key) == "region" {
				current.Region = strings.TrimSpace(value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return current, nil
}
