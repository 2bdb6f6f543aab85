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

// Package cli holds the interactive helpers of the sandbox command.
package cli

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"m4o.io/sandbox"
)

// ReadAuth reads a login and password from the keyboard and prepares a Basic
// auth header, validated against the server's user details endpoint.  Wrong
// credentials re-prompt until they validate; an empty login is a polite opt
// out and returns an empty header.
func ReadAuth(api string) (string, error) {
	in := bufio.NewReader(os.Stdin)

	for {
		fmt.Fprint(os.Stderr, "Login: ")
		login, err := in.ReadString('\n')
		if err != nil {
			return "", err
		}
		login = strings.TrimSpace(login)
		if login == "" {
			fmt.Println("Okay")
			return "", nil
		}

		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		creds := login + ":" + string(password)
		header := "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))

		if err := sandbox.NewClient(api, header).UserDetails(); err == nil {
			return header, nil
		}

		fmt.Fprintln(os.Stderr, "You must have mistyped. Please try again.")
	}
}
