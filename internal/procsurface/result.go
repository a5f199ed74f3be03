// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package procsurface implements the typed process-surface command
// registration described in spec §6.6: one Cmd struct and constructor per
// named operation, in the same idiom as the teacher's
// rpc/jsonrpc/types.XxxCmd/NewXxxCmd pattern, dispatched through a single
// Dispatcher that every operation returns a {success, data?, error?}
// Result from.
package procsurface

import "github.com/RenAndKiwi/nostring/errs"

// Result is the uniform envelope every process-surface operation returns
// (spec §6.6: "Each returns {success, data?, error?}").
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ResultError `json:"error,omitempty"`
}

// ResultError is the JSON-safe projection of an *errs.Error: enough to act
// on (Kind) and explain (Msg/Item) without ever carrying key material.
type ResultError struct {
	Kind string `json:"kind"`
	Msg  string `json:"msg"`
	Item string `json:"item,omitempty"`
}

// ok builds a successful Result.
func ok(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// fail builds a failed Result from err, unwrapping an *errs.Error if
// present so Kind is always populated; an error that isn't one of ours
// (a programming bug, not a spec-classified failure) is reported under a
// synthetic "internal" kind rather than panicking.
func fail(err error) Result {
	if e, isErrs := err.(*errs.Error); isErrs {
		return Result{Error: &ResultError{Kind: string(e.Kind), Msg: e.Msg, Item: e.Item}}
	}
	return Result{Error: &ResultError{Kind: "internal", Msg: err.Error()}}
}
