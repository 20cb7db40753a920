// Copyright 2025 Google LLC
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

package hottrack

import "errors"

// The tracker's error taxonomy. All are local and non-fatal; none of
// them are wrapped with call-site context because none of them ever
// reach a human directly — RecordIO swallows every one of them.
var (
	// ErrOutOfMemory is surfaced only by Init.
	ErrOutOfMemory = errors.New("hottrack: out of memory")

	// ErrNotFound is surfaced by LookupInode and the internal index
	// lookups.
	ErrNotFound = errors.New("hottrack: not found")

	// ErrNotEnabled means the volume has not turned tracking on.
	ErrNotEnabled = errors.New("hottrack: tracking not enabled")

	// ErrInvalid covers a non-regular inode or a zero-length I/O.
	ErrInvalid = errors.New("hottrack: invalid argument")

	// ErrShrinkStop is returned by ShrinkerScan when the caller's
	// reclaim context forbids filesystem reclaim (the original's
	// !(gfp_mask & __GFP_FS) check, which returns SHRINK_STOP rather
	// than scanning). Distinct from a nil error with 0 reclaimed, which
	// means the scan ran and found nothing to free.
	ErrShrinkStop = errors.New("hottrack: reclaim not permitted in this context")
)
