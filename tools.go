//go:build tools
// +build tools

// Package tools keeps mockgen, used by go generate in contract/, tracked in go.mod.
package project_chat

import (
	_ "go.uber.org/mock/mockgen"
)
