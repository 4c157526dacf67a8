package main

import (
	"github.com/itchio/img4kit/cmd/extract"
	"github.com/itchio/img4kit/cmd/info"
	"github.com/itchio/img4kit/cmd/mkpatch"
	"github.com/itchio/img4kit/cmd/patch"
	"github.com/itchio/img4kit/cmd/replace"
	"github.com/itchio/img4kit/cmd/setdescription"
	"github.com/itchio/img4kit/cmd/settype"
	"github.com/itchio/img4kit/cmd/wrap"
	"github.com/itchio/img4kit/mansion"
)

// Each of these specify their own arguments and flags in
// their own package.
func registerCommands(ctx *mansion.Context) {
	patch.Register(ctx)
	mkpatch.Register(ctx)

	wrap.Register(ctx)
	replace.Register(ctx)

	info.Register(ctx)
	extract.Register(ctx)
	settype.Register(ctx)
	setdescription.Register(ctx)
}
