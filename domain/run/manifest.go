package run

import (
	"fmt"

	"paxclean/domain/core"
)

// Manifest identifies what a run consumed. Two runs with the same
// fingerprint see the same input under the same rules and code.
type Manifest struct {
	RunID            core.RunID       `json:"run_id"`
	Input            string           `json:"input"`
	InputFingerprint core.Fingerprint `json:"input_fingerprint"`
	RulesFingerprint core.Fingerprint `json:"rules_fingerprint"`
	CodeVersion      string           `json:"code_version"`
	Fingerprint      core.Fingerprint `json:"fingerprint"`
	CreatedAt        core.Timestamp   `json:"created_at"`
}

// NewManifest creates the manifest of a new run.
func NewManifest(input string, inputFP, rulesFP core.Fingerprint, codeVersion string) (*Manifest, error) {
	fp, err := computeFingerprint(inputFP, rulesFP, codeVersion)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		RunID:            core.NewRunID(),
		Input:            input,
		InputFingerprint: inputFP,
		RulesFingerprint: rulesFP,
		CodeVersion:      codeVersion,
		Fingerprint:      fp,
		CreatedAt:        core.Now(),
	}, nil
}

// computeFingerprint hashes every determinism parameter
func computeFingerprint(inputFP, rulesFP core.Fingerprint, codeVersion string) (core.Fingerprint, error) {
	h, err := core.NewHasher()
	if err != nil {
		return "", err
	}
	h.WriteString("input:" + string(inputFP))
	h.WriteString("rules:" + string(rulesFP))
	h.WriteString("code:" + codeVersion)
	return h.Sum(), nil
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.InputFingerprint == "" {
		return fmt.Errorf("run manifest: input_fingerprint cannot be empty")
	}
	if m.RulesFingerprint == "" {
		return fmt.Errorf("run manifest: rules_fingerprint cannot be empty")
	}
	if m.CodeVersion == "" {
		return fmt.Errorf("run manifest: code_version cannot be empty")
	}
	return nil
}
