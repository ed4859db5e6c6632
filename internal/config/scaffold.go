package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
banks:
  source: dir
  dir: banks
store:
  driver: sqlite
session:
  seconds_per_question: 120
  persist_position: true
server:
  listen_addr: ":8080"
log:
  path: .quizdeck/quizdeck.log
  level: info
`

const sampleBank = `version: 1
name: Sample quiz
questions:
  - id: capital
    text: What is the capital of France?
    options:
      - {key: a, text: Lyon}
      - {key: b, text: Paris}
      - {key: c, text: Marseille}
    correct_answers: [b]
  - id: primes
    text: Which of these numbers are prime?
    options:
      - {key: a, text: "2"}
      - {key: b, text: "4"}
      - {key: c, text: "7"}
    correct_answers: [a, c]
  - id: ocean
    text: Name the largest ocean on Earth.
    correct_answers: [Pacific, Pacific Ocean]
`

// SampleBankID is the id of the bank written by Scaffold.
const SampleBankID = "sample"

// Scaffold writes a starter config and a sample bank under root.
func Scaffold(root string) error {
	configPath := ConfigPath(root)
	bankPath := filepath.Join(root, DefaultBankDir, SampleBankID+".yml")
	for _, path := range []string{configPath, bankPath} {
		if info, err := os.Stat(path); err == nil {
			if info.IsDir() {
				return fmt.Errorf("path %q is a directory", path)
			}
			return fmt.Errorf("file already exists at %q", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	for _, dir := range []string{ConfigDir(root), filepath.Dir(bankPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.WriteFile(bankPath, []byte(sampleBank), 0o644); err != nil {
		return fmt.Errorf("write sample bank: %w", err)
	}
	return nil
}
