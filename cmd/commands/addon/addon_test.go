package addon

import (
	"testing"

	"onmodulus/xervo/cmd/commands/cmdtest"
	"onmodulus/xervo/internal/config"
	"onmodulus/xervo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"id":"a-mongo","name":"MongoDB","regions":["us-east-1","eu-west-1"],
	 "plans":[{"id":"m-small","name":"Small"},{"id":"m-large","name":"Large"}]},
	{"id":"a-redis","name":"Redis","plans":[{"id":"r-basic","name":"Basic"}]}
]`

func setup(t *testing.T) *cmdtest.Env {
	t.Helper()
	env := cmdtest.Setup(t)
	env.API.JSON("GET", "/user/u1/projects", `[{"id":"p1","name":"api","status":"running"}]`)
	env.API.JSON("GET", "/addons", catalogJSON)
	return env
}

func TestList(t *testing.T) {
	env := setup(t)
	env.API.JSON("GET", "/project/p1/addons", `[{"id":"x1","addon_id":"a-mongo","addon_name":"MongoDB","plan":"Small",
		"config":{"MONGO_URI":"mongodb://...","MONGO_DB":"api"}}]`)

	stdout, _, err := cmdtest.Run(t, NewCommand(), "list", "-p", "api")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MongoDB")
	assert.Contains(t, stdout, "MONGO_DB, MONGO_URI")
}

func TestAvailable_Cached(t *testing.T) {
	env := setup(t)

	for range 2 {
		stdout, _, err := cmdtest.Run(t, NewCommand(), "available")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Small, Large")
		assert.Contains(t, stdout, "us-east-1, eu-west-1")
	}
	assert.Len(t, env.API.Find("GET", "/addons"), 1, "second listing should come from the cache")

	_, _, err := cmdtest.Run(t, NewCommand(), "available", "--refresh", "-o", "json")
	require.NoError(t, err)
	assert.Len(t, env.API.Find("GET", "/addons"), 2)
}

func TestAdd(t *testing.T) {
	env := setup(t)
	env.API.JSON("POST", "/project/p1/addons", `{"id":"x2","addon_id":"a-mongo","addon_name":"MongoDB","plan":"Large",
		"config":{"MONGO_URI":"mongodb://db"}}`)

	stdout, _, err := cmdtest.Run(t, NewCommand(), "add", "mongodb", "--plan", "large", "-p", "api")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Added MongoDB (Large)")
	assert.Contains(t, stdout, "mongodb://db")

	reqs := env.API.Find("POST", "/project/p1/addons")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"addonId":"a-mongo","planId":"m-large","region":"us-east-1"}`, reqs[0].Body)
}

func TestAdd_DefaultRegionFromConfig(t *testing.T) {
	env := setup(t)
	env.API.JSON("POST", "/project/p1/addons", `{"id":"x2","addon_name":"MongoDB"}`)
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.DefaultRegion = "eu-west-1"
	require.NoError(t, cfg.Save())

	_, _, err = cmdtest.Run(t, NewCommand(), "add", "a-mongo", "-p", "api")
	require.NoError(t, err)

	reqs := env.API.Find("POST", "/project/p1/addons")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"addonId":"a-mongo","planId":"m-small","region":"eu-west-1"}`, reqs[0].Body)
}

func TestAdd_UnknownAddon(t *testing.T) {
	setup(t)

	_, _, err := cmdtest.Run(t, NewCommand(), "add", "postgres", "-p", "api")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove(t *testing.T) {
	env := setup(t)
	env.API.JSON("GET", "/project/p1/addons", `[{"id":"x1","addon_id":"a-redis","addon_name":"Redis","plan":"Basic"}]`)
	env.API.JSON("DELETE", "/project/p1/addons/x1", `null`)

	_, _, err := cmdtest.Run(t, NewCommand(), "remove", "redis", "-p", "api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	stdout, _, err := cmdtest.Run(t, NewCommand(), "remove", "redis", "-p", "api", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Removed Redis from "api".`)
	assert.Len(t, env.API.Find("DELETE", "/project/p1/addons/x1"), 1)
}

func TestPickRegion(t *testing.T) {
	addon := domain.AvailableAddon{Name: "MongoDB", Regions: []string{"us-east-1", "eu-west-1"}}
	tests := []struct {
		name, requested, fallback, want string
		wantErr                         bool
	}{
		{name: "requested", requested: "EU-WEST-1", want: "eu-west-1"},
		{name: "fallback", fallback: "eu-west-1", want: "eu-west-1"},
		{name: "first region", want: "us-east-1"},
		{name: "fallback not offered", fallback: "ap-south-1", want: "us-east-1"},
		{name: "requested not offered", requested: "ap-south-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickRegion(addon, tt.requested, tt.fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := pickRegion(domain.AvailableAddon{}, "", "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", got)
}

func TestMatchAddon(t *testing.T) {
	addons := []domain.Addon{
		{ID: "x1", AddonID: "a-redis", Name: "Redis"},
		{ID: "x2", AddonID: "a-redis", Name: "Redis"},
		{ID: "x3", AddonID: "a-mongo", Name: "MongoDB"},
	}

	a, err := MatchAddon(addons, "x2")
	require.NoError(t, err)
	assert.Equal(t, "x2", a.ID)

	a, err = MatchAddon(addons, "mongodb")
	require.NoError(t, err)
	assert.Equal(t, "x3", a.ID)

	_, err = MatchAddon(addons, "redis")
	assert.ErrorContains(t, err, "more than once")

	_, err = MatchAddon(addons, "postgres")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
