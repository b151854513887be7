//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// statRoots are the source trees counted by Stats.
var statRoots = []string{"cmd", "internal", "pkg"}

// enginePkgs hold the link table and network algorithms. Every other
// package is reported as support.
var enginePkgs = []string{"internal/linktable", "internal/network"}

type pkgStat struct {
	Package string `json:"package"`
	Group   string `json:"group"`
	Prod    int    `json:"go_loc_prod"`
	Test    int    `json:"go_loc_test"`
}

// Stats prints one JSON record of Go line counts per package, followed by
// a record per group (engine, support) and a total.
func Stats() error {
	byPkg := make(map[string]*pkgStat)
	for _, root := range statRoots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".go" {
				return nil
			}
			n, err := countLines(path)
			if err != nil {
				return fmt.Errorf("counting %s: %w", path, err)
			}
			pkg := filepath.ToSlash(filepath.Dir(path))
			st, ok := byPkg[pkg]
			if !ok {
				st = &pkgStat{Package: pkg, Group: pkgGroup(pkg)}
				byPkg[pkg] = st
			}
			if strings.HasSuffix(path, "_test.go") {
				st.Test += n
			} else {
				st.Prod += n
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	names := make([]string, 0, len(byPkg))
	for pkg := range byPkg {
		names = append(names, pkg)
	}
	slices.Sort(names)

	enc := json.NewEncoder(os.Stdout)
	groups := map[string]*pkgStat{
		"engine":  {Package: "*", Group: "engine"},
		"support": {Package: "*", Group: "support"},
	}
	total := pkgStat{Package: "*", Group: "total"}
	for _, pkg := range names {
		st := byPkg[pkg]
		if err := enc.Encode(st); err != nil {
			return err
		}
		g := groups[st.Group]
		g.Prod += st.Prod
		g.Test += st.Test
		total.Prod += st.Prod
		total.Test += st.Test
	}
	for _, g := range []string{"engine", "support"} {
		if err := enc.Encode(groups[g]); err != nil {
			return err
		}
	}
	return enc.Encode(total)
}

func pkgGroup(pkg string) string {
	for _, e := range enginePkgs {
		if pkg == e || strings.HasPrefix(pkg, e+"/") {
			return "engine"
		}
	}
	return "support"
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}
