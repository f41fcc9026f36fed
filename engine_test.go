// Copyright 2020-2021 Dolthub, Inc.
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

package h3cellstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukis-h3cellstore/h3cellstore/query"
	"github.com/ukis-h3cellstore/h3cellstore/tableset"
)

func TestTableSetLookupMissing(t *testing.T) {
	e := &Engine{tableSets: map[string]*tableset.TableSet{}}
	_, ok := e.TableSet("weather")
	assert.False(t, ok)
}

func TestTableSetLookupFound(t *testing.T) {
	ts := tableset.NewTableSet("weather")
	e := &Engine{tableSets: map[string]*tableset.TableSet{"weather": ts}}

	got, ok := e.TableSet("weather")
	require.True(t, ok)
	assert.Same(t, ts, got)
}

func TestFetchCellsRejectsUnknownBasename(t *testing.T) {
	e := &Engine{tableSets: map[string]*tableset.TableSet{}}
	_, err := e.FetchCells(nil, "missing", nil, query.AutoGenerated())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestTableSetNotFoundErrorMessage(t *testing.T) {
	err := tableSetNotFound("weather")
	assert.Equal(t, "no tableset discovered for basename weather", err.Error())
}
