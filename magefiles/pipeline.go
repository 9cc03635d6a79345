//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

// Extract writes the strict and broad cardiology subsets from data/raw.
func Extract() error {
	mg.Deps(Init)
	return cli("extract")
}

// Convert turns data/derived/heart_disease.jsonl into the MCQ and evaluation files.
func Convert() error {
	return cli("convert")
}

// Pipeline runs extract then convert.
func Pipeline() error {
	mg.Deps(Init)
	return cli("run")
}

// Catalog groups the SQLite catalog targets.
type Catalog mg.Namespace

// Store ingests heart_disease_mcq.jsonl into the catalog.
func (Catalog) Store() error {
	return cli("catalog", "store")
}

// Export writes the catalog to data/derived/index/export.yaml.
func (Catalog) Export() error {
	return cli("catalog", "export")
}
