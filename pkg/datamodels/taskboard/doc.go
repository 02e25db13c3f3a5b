// Package taskboard contains the generated data models for the taskboard
// example schema. Edit taskboard.yaml and regenerate instead of touching
// the generated file.
package taskboard

//go:generate go run github.com/velosovictor/frontblok-crud/cmd/blokgen -schema taskboard.yaml -out taskboard_gen.go -pkg taskboard
