package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

func TestParsePolicyKind(t *testing.T) {
	cases := []struct {
		raw     string
		want    PolicyKind
		wantErr bool
	}{
		{"lenient", PolicyLenient, false},
		{"standard", PolicyStandard, false},
		{"strict", PolicyStrict, false},
		{" STRICT ", PolicyStrict, false},
		{"harsh", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParsePolicyKind(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGroupPolicyValidateToleranceBounds(t *testing.T) {
	// Both bounds are inclusive.
	assert.NoError(t, GroupPolicy{ToleranceMinutes: 0, Kind: PolicyStandard}.Validate())
	assert.NoError(t, GroupPolicy{ToleranceMinutes: 60, Kind: PolicyStandard}.Validate())

	err := GroupPolicy{ToleranceMinutes: -1, Kind: PolicyStandard}.Validate()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))

	err = GroupPolicy{ToleranceMinutes: 61, Kind: PolicyStandard}.Validate()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))
}

func TestGroupPolicyValidateRejectsUnknownKind(t *testing.T) {
	err := GroupPolicy{ToleranceMinutes: 10, Kind: "harsh"}.Validate()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))
}

func TestDefaultGroupPolicy(t *testing.T) {
	policy := DefaultGroupPolicy()
	assert.Equal(t, PolicyStandard, policy.Kind)
	assert.Equal(t, 10, policy.ToleranceMinutes)
	assert.NoError(t, policy.Validate())
}

func TestGroupConfigValidate(t *testing.T) {
	valid, err := schedule.NewWindow(schedule.Monday, schedule.Minute(8*60), schedule.Minute(10*60))
	require.NoError(t, err)

	cases := []struct {
		name    string
		cfg     GroupConfig
		wantErr bool
	}{
		{
			"valid with windows",
			GroupConfig{GroupID: id.GroupID(1), Windows: []schedule.Window{valid}, Policy: DefaultGroupPolicy()},
			false,
		},
		{
			"valid with zero windows",
			GroupConfig{GroupID: id.GroupID(1), Policy: DefaultGroupPolicy()},
			false,
		},
		{
			"non-positive group id",
			GroupConfig{GroupID: 0, Policy: DefaultGroupPolicy()},
			true,
		},
		{
			"inverted window",
			GroupConfig{
				GroupID: id.GroupID(1),
				Windows: []schedule.Window{{Day: schedule.Monday, Start: schedule.Minute(10 * 60), End: schedule.Minute(8 * 60)}},
				Policy:  DefaultGroupPolicy(),
			},
			true,
		},
		{
			"bad policy",
			GroupConfig{GroupID: id.GroupID(1), Policy: GroupPolicy{ToleranceMinutes: 999, Kind: PolicyStandard}},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
