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

package sandbox_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/sandbox"
)

func TestClientInflatesGzipResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))

		w.Header().Set("Content-Encoding", "gzip")
		zw := gzip.NewWriter(w)
		fmt.Fprint(zw, "<osm><api/></osm>")
		require.NoError(t, zw.Close())
	}))
	defer srv.Close()

	data, err := sandbox.NewClient(srv.URL+"/", "").Get("capabilities", nil)
	require.NoError(t, err)
	assert.Equal(t, "<osm><api/></osm>", string(data))
}

func TestClientSendsAuthorization(t *testing.T) {
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	_, err := sandbox.NewClient(srv.URL+"/", "Basic dXNlcjpwYXNz").Get("user/details", nil)
	require.NoError(t, err)
	assert.Equal(t, "Basic dXNlcjpwYXNz", header)

	_, err = sandbox.NewClient(srv.URL+"/", "").Get("user/details", nil)
	require.NoError(t, err)
	assert.Empty(t, header, "no Authorization header without credentials")
}

func TestClientErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "area too large", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := sandbox.NewClient(srv.URL+"/", "").Get("map", nil)
	require.Error(t, err)

	var he *sandbox.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Body, "area too large")
}

func TestCapabilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/capabilities", r.URL.Path)
		fmt.Fprint(w, `<osm><api><changesets maximum_elements="10000"/></api></osm>`)
	}))
	defer srv.Close()

	n, err := sandbox.NewClient(srv.URL+"/", "").Capabilities()
	require.NoError(t, err)
	assert.Equal(t, 10000, n)
}

func TestUserDetailsRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	err := sandbox.NewClient(srv.URL+"/", "").UserDetails()
	require.Error(t, err)
}
