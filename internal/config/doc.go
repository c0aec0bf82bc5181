// Package config loads the YAML configuration of the segmenter command.
//
// Missing keys fall back to Default. String values of the input section
// support ${ENV_VAR} expansion, and a leading "~/" in local paths expands to
// the home directory.
package config
