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

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tenure-io/tenure/auth"
)

func TestStaticAuthorizer(t *testing.T) {
	authorizer := auth.NewStaticAuthorizer()
	authorizer.Grant("admin-token", auth.RoleConfigurator)

	assert.NoError(
		t,
		authorizer.Authorize("admin-token", auth.RoleConfigurator),
	)
	assert.ErrorIs(
		t,
		authorizer.Authorize("other-token", auth.RoleConfigurator),
		auth.ErrNotAuthorized,
	)
	assert.ErrorIs(
		t,
		authorizer.Authorize("admin-token", auth.Role("operator")),
		auth.ErrNotAuthorized,
	)
}

func TestStaticAuthorizerEmpty(t *testing.T) {
	authorizer := auth.NewStaticAuthorizer()
	assert.ErrorIs(
		t,
		authorizer.Authorize("", auth.RoleConfigurator),
		auth.ErrNotAuthorized,
	)
}
