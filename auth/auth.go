// Copyright 2025 Tenure Labs
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

// Package auth provides the authorization gate consulted before mutating
// lockup configuration. Roles are granted to opaque capability tokens passed
// into each restricted call rather than inferred from ambient identity.
package auth

import (
	"errors"
	"sync"
)

// Role names a capability required for a restricted operation
type Role string

const (
	// RoleConfigurator may set release points and suspend/resume the system
	RoleConfigurator Role = "configurator"
)

// Token is an opaque capability credential presented by a caller
type Token string

// ErrNotAuthorized is returned when a token does not carry the required role
var ErrNotAuthorized = errors.New("not authorized")

// Authorizer checks whether a token carries a role
type Authorizer interface {
	Authorize(token Token, role Role) error
}

// StaticAuthorizer is an Authorizer over a fixed token-to-roles table,
// populated at startup from configuration
type StaticAuthorizer struct {
	mu     sync.RWMutex
	grants map[Token]map[Role]struct{}
}

func NewStaticAuthorizer() *StaticAuthorizer {
	return &StaticAuthorizer{
		grants: make(map[Token]map[Role]struct{}),
	}
}

// Grant adds a role to a token
func (a *StaticAuthorizer) Grant(token Token, role Role) {
	a.mu.Lock()
	defer a.mu.Unlock()
	roles, ok := a.grants[token]
	if !ok {
		roles = make(map[Role]struct{})
		a.grants[token] = roles
	}
	roles[role] = struct{}{}
}

func (a *StaticAuthorizer) Authorize(token Token, role Role) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	roles, ok := a.grants[token]
	if !ok {
		return ErrNotAuthorized
	}
	if _, ok := roles[role]; !ok {
		return ErrNotAuthorized
	}
	return nil
}
