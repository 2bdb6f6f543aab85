// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/sandbox"
	"m4o.io/sandbox/cmd/sandbox/cli"
	"m4o.io/sandbox/model"
)

var (
	auth        bool
	overpassAPI string
	filterStr   string
	dateStr     string
	oscPath     string

	clip     bool
	dropRefs bool
	dropBare bool
)

func init() {
	flags := RootCmd.Flags()
	flags.BoolVarP(&auth, "auth", "a", false,
		"prompt for sandbox credentials before starting; required for uploading")
	flags.StringVar(&overpassAPI, "overpass", sandbox.DefaultOverpass,
		"use a custom Overpass API instance")
	flags.StringVar(&filterStr, "filter", "",
		"Overpass tag filter, e.g. 'building=yes'")
	flags.StringVar(&dateStr, "date", "",
		"download the data as of this date, e.g. 2024-01-01T00:00:00Z")
	flags.StringVar(&oscPath, "osc", "",
		"write the downloaded data to this osmChange file instead of uploading")
	flags.BoolVar(&clip, "clip", false,
		"drop nodes outside the box and nested relations")
	flags.BoolVar(&dropRefs, "drop-missing", false,
		"drop ways and relations with members missing from the download")
	flags.BoolVar(&dropBare, "drop-bare-nodes", false,
		"drop untagged nodes referenced by nothing")
}

// RootCmd downloads data from the Overpass API and uploads it to the mapping
// sandbox.
var RootCmd = &cobra.Command{
	Use:   "sandbox <minlon,minlat,maxlon,maxlat>",
	Short: "Copy an area of OpenStreetMap data into the dev sandbox",
	Long: "Downloads data from the Overpass API and uploads it to the mapping sandbox.\n" +
		"Because sandboxes are for grown-ups, too!",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		box, err := model.ParseBoundingBox(args[0])
		if err != nil {
			log.Fatal(err)
		}

		var header string
		if oscPath == "" {
			if !auth {
				log.Fatal("uploading to the sandbox requires --auth")
			}
			header, err = cli.ReadAuth(sandbox.SandboxAPI)
			if err != nil {
				log.Fatal(err)
			}
			if header == "" {
				// user opted out of the credential prompt
				return
			}
		}

		cp := sandbox.NewCopier(header, overpassAPI)
		cp.Filter = filterStr
		cp.Date = dateStr

		if clip {
			cp.Filters = append(cp.Filters, sandbox.ClipToBBox(box.Normalize()))
		}
		if dropRefs {
			cp.Filters = append(cp.Filters, sandbox.DropMissingRefs)
		}
		if dropBare {
			cp.Filters = append(cp.Filters, sandbox.DropBareNodes)
		}

		if oscPath != "" {
			f, err := os.Create(oscPath)
			if err != nil {
				log.Fatal(err)
			}

			if err := cp.Export(box, f); err != nil {
				log.Fatal(err)
			}
			if err := f.Close(); err != nil {
				log.Fatal(err)
			}

			return
		}

		bar := &cli.UploadBar{}
		cp.Progress = bar.Update
		defer bar.Finish()

		if err := cp.Run(box); err != nil {
			log.Fatal(err)
		}
	},
}
