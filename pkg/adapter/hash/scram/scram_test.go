// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scram_test

import (
	"strings"
	"testing"

	"github.com/momeni/freight/pkg/adapter/hash/scram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salt = "c2FsdHNhbHRzYWx0c2FsdA=="

func TestHashIsDeterministicForFixedSalt(t *testing.T) {
	m := scram.SHA256()
	h1, err := m.Hash("secret", salt, 4096)
	require.NoError(t, err)
	h2, err := m.Hash("secret", salt, 4096)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.True(t, strings.HasPrefix(h1, "SCRAM-SHA-256$4096:"+salt+"$"))

	h3, err := m.Hash("other", salt, 4096)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestHashRandomSalt(t *testing.T) {
	m := scram.SHA1()
	h1, err := m.Hash("secret", "", 5000)
	require.NoError(t, err)
	h2, err := m.Hash("secret", "", 5000)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "salts must be random")
	assert.True(t, strings.HasPrefix(h1, "SCRAM-SHA-1$5000:"))
}

func TestHashRejectsBadInput(t *testing.T) {
	m := scram.SHA256()
	_, err := m.Hash("", salt, 4096)
	assert.Error(t, err, "empty password")
	_, err = m.Hash("secret", salt, 100)
	assert.Error(t, err, "few iterations")
	_, err = m.Hash("secret", "%%%", 4096)
	assert.Error(t, err, "bad salt")
}

func TestByName(t *testing.T) {
	m, err := scram.ByName("scram-sha-256")
	require.NoError(t, err)
	assert.Equal(t, "SCRAM-SHA-256", m.Name())
	m, err = scram.ByName(" SCRAM-SHA-1 ")
	require.NoError(t, err)
	assert.Equal(t, "SCRAM-SHA-1", m.Name())
	_, err = scram.ByName("md5")
	assert.Error(t, err)
}
