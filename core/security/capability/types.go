/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package capability implements the Capability Pool (C6): a fixed-size
// slotted table of non-forgeable capability records with atomic
// state/rights/refcount and an integrity checksum.
package capability

import "github.com/orion-os/kernel/core/security/seclevel"

// Type is the kind of kernel object a capability confers rights over.
type Type int

const (
	TypeNone Type = iota
	TypeMemory
	TypeIPCPort
	TypeProcess
	TypeThread
	TypeFile
	TypeDirectory
	TypeDevice
	TypeSocket
	TypeTimer
	TypeSecurityContext
	TypeCryptoKey
	TypeHardwareResource
)

// Rights is the atomic bitmap of exercisable rights over a capability's
// object.
type Rights uint64

const (
	Read Rights = 1 << iota
	Write
	Exec
	Grant
	Revoke
	Delete
	Create
	Modify
	Traverse
	Bind
	Listen
	Connect
	Debug
	Admin
	Immortal
	Delegatable
)

// Level is an alias of seclevel.Level, kept so existing call sites can
// write capability.Level without importing seclevel directly.
type Level = seclevel.Level

const (
	LevelPublic       = seclevel.Public
	LevelRestricted   = seclevel.Restricted
	LevelConfidential = seclevel.Confidential
	LevelSecret       = seclevel.Secret
	LevelTopSecret    = seclevel.TopSecret
)

// State is a capability slot's atomic lifecycle state.
type State int32

const (
	StateActive State = iota
	StateSuspended
	StateRevoked
	StateExpired
)

// MaxDelegationDepth bounds how many grant hops a capability may be
// delegated through.
const MaxDelegationDepth = 10

// DefaultCapacity is the pool's default slot count.
const DefaultCapacity = 65536
