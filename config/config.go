// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package config provides the settings of the grub-pcr-predict tool, which
// can be supplied in a YAML file.
package config

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/canonical/go-tpm2"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/johnwallace123/tpm-luks/internal/paths"
	"github.com/johnwallace123/tpm-luks/internal/tcg"
)

// Config contains the inputs used for predicting and recording GRUB
// measurements. Any field may be overridden from the command line.
type Config struct {
	Script    string `yaml:"script"`    // path to grub.cfg
	Grubenv   string `yaml:"grubenv"`   // path to the GRUB environment block
	Editenv   string `yaml:"editenv"`   // grub-editenv tool, used if grubenv is empty
	History   string `yaml:"history"`   // path to the hex encoded digest history
	EventLog  string `yaml:"event-log"` // path to the binary TCG event log
	Algorithm string `yaml:"algorithm"` // sha1, sha256, sha384 or sha512
	PCR       int    `yaml:"pcr"`       // the PCR that GRUB measures commands to
	MaxDepth  int    `yaml:"max-depth"` // maximum nesting depth of script blocks
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Script:    paths.GrubConfigPath(),
		Grubenv:   paths.GrubEnvPath(),
		Editenv:   paths.GrubEditenv(),
		History:   paths.GrubHistoryPath,
		EventLog:  paths.EventLogPath,
		Algorithm: "sha1",
		PCR:       int(tcg.GrubCommandPCR)}
}

// Parse decodes the supplied YAML document on top of the built-in
// configuration. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, xerrors.Errorf("cannot decode config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, xerrors.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Load reads the configuration from the YAML file at the specified path.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("cannot read config: %w", err)
	}
	return Parse(data)
}

func (c *Config) validate() error {
	if _, err := ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	if c.PCR < 0 || c.PCR > 23 {
		return fmt.Errorf("invalid PCR %d", c.PCR)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid max-depth %d", c.MaxDepth)
	}
	return nil
}

// PCRAlgorithm returns the configured digest algorithm.
func (c *Config) PCRAlgorithm() (tpm2.HashAlgorithmId, error) {
	return ParseAlgorithm(c.Algorithm)
}

// PCRHandle returns the configured PCR.
func (c *Config) PCRHandle() tpm2.Handle {
	return tpm2.Handle(c.PCR)
}

// ParseAlgorithm returns the digest algorithm with the specified name. An
// empty name selects SHA-1.
func ParseAlgorithm(name string) (tpm2.HashAlgorithmId, error) {
	switch strings.ToLower(name) {
	case "", "sha1":
		return tpm2.HashAlgorithmSHA1, nil
	case "sha256":
		return tpm2.HashAlgorithmSHA256, nil
	case "sha384":
		return tpm2.HashAlgorithmSHA384, nil
	case "sha512":
		return tpm2.HashAlgorithmSHA512, nil
	default:
		return tpm2.HashAlgorithmNull, fmt.Errorf("unrecognized algorithm %q", name)
	}
}
