package ai

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Prompt templates live in a plain text file split into sections:
//
//	### 1 CLEAN
//	<template text, may reference <<<transcript>>> or <<<clean_text>>>>
//	### 2 FULL
//	...
//
// Missing sections fall back to built-in minimal templates so a damaged
// prompt file degrades output quality instead of blocking the pipeline.
var sectionPattern = regexp.MustCompile(`(?m)^### (\d+) (\w+)\s*$`)

var fallbackPrompts = map[string]string{
	"CLEAN":     `Remove ads, sponsor segments and calls to action from the transcript. Return strict JSON: {"clean":"text","links":["url1"]}. Transcript: <<<transcript>>>`,
	"FULL":      `Write the most useful complete summary of the text, no fluff. Text: <<<clean_text>>>`,
	"MIDDLE_10": `Summarize the text in exactly 10 sentences. Text: <<<clean_text>>>`,
	"SHORT_300": `Summarize the text in 1-2 sentences, hard limit 300 characters. Text: <<<clean_text>>>`,
	"RESOURCES": `List the services, resources and links mentioned in the text, one per line. Text: <<<clean_text>>>`,
}

// PromptStore holds loaded templates keyed by section name.
type PromptStore struct {
	prompts map[string]string
}

// LoadPrompts parses the prompt file. A missing file is an error; individual
// missing sections are not (Get falls back).
func LoadPrompts(path string) (*PromptStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "prompt file %s", path)
	}
	return ParsePrompts(string(data)), nil
}

func ParsePrompts(content string) *PromptStore {
	store := &PromptStore{prompts: make(map[string]string)}

	matches := sectionPattern.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		name := content[m[4]:m[5]]
		bodyStart := m[1]
		bodyEnd := len(content)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		store.prompts[name] = strings.TrimSpace(content[bodyStart:bodyEnd])
	}
	return store
}

// EmptyPromptStore returns a store that always serves the fallbacks.
func EmptyPromptStore() *PromptStore {
	return &PromptStore{prompts: make(map[string]string)}
}

// Get returns the template for a prompt ID, falling back to the built-in
// template. ok is false only for unknown IDs.
func (p *PromptStore) Get(promptID string) (string, bool) {
	if text, found := p.prompts[promptID]; found && text != "" {
		return text, true
	}
	text, found := fallbackPrompts[promptID]
	return text, found
}

// Fill substitutes the input text into the template. Templates with explicit
// placeholders get them replaced; everything else has the input appended.
func Fill(template, inputText string) string {
	if strings.Contains(template, "<<<transcript>>>") {
		return strings.ReplaceAll(template, "<<<transcript>>>", inputText)
	}
	if strings.Contains(template, "<<<clean_text>>>") {
		return strings.ReplaceAll(template, "<<<clean_text>>>", inputText)
	}
	return template + "\n\nINPUT: <<<" + inputText + ">>>"
}
