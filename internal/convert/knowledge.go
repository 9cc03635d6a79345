// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "strings"

// unknownKnowledge labels records without a usable source path.
const unknownKnowledge = "unknown"

// DeriveKnowledge turns a corpus source path into a short knowledge label.
// ".../questions/<REGION>/<SPLIT>.jsonl" becomes "<REGION>/<SPLIT>"; any
// other path falls back to its last two parts without the extension.
func DeriveKnowledge(sourcePath string) string {
	if sourcePath == "" {
		return unknownKnowledge
	}

	parts := strings.Split(strings.ReplaceAll(sourcePath, `\`, "/"), "/")

	for i, p := range parts {
		if p == "questions" && i+2 < len(parts) {
			region := parts[i+1]
			split, _, _ := strings.Cut(parts[i+2], ".")
			return region + "/" + split
		}
	}

	if len(parts) >= 2 {
		label, _, _ := strings.Cut(strings.Join(parts[len(parts)-2:], "/"), ".")
		return label
	}
	label, _, _ := strings.Cut(parts[0], ".")
	if label == "" {
		return unknownKnowledge
	}
	return label
}
