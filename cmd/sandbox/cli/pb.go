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

package cli

import (
	"fmt"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// UploadBar renders a terminal progress bar over the elements uploaded so
// far.  The bar is created lazily on the first update, once the total is
// known.
type UploadBar struct {
	bar *pb.ProgressBar
}

// Update advances the bar to done of total elements.
func (u *UploadBar) Update(done, total int) {
	if u.bar == nil {
		u.bar = pb.New(total).SetWidth(79)
		u.bar.Output = os.Stderr
		u.bar.Start()
	}

	u.bar.Set(done)
}

// Finish clears the terminal line of progress output.
func (u *UploadBar) Finish() {
	if u.bar == nil {
		return
	}

	// make sure newline is not printed by Finish()
	u.bar.Output = nil
	u.bar.NotPrint = true

	u.bar.Finish()

	fmt.Fprintf(os.Stderr, "\033[2K\r") // clear status bar
}
