package service

import (
	"context"
	"strings"
	"testing"

	"Itemizer/internal/activity"
	"Itemizer/internal/model"
	"Itemizer/internal/repository/rdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	org := env.org(t, alice, "Robotics")
	item := env.item(t, alice, "Servo")

	_, err := env.svc.Assignments.Create(ctx, AssignmentInput{ItemID: item.ID, OrganizationID: org.ID, CurrentQuantity: -1, EnoughThreshold: 5})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	_, err = env.svc.Assignments.Create(ctx, AssignmentInput{ItemID: item.ID, OrganizationID: org.ID, CurrentQuantity: 0, EnoughThreshold: 0})
	assert.True(t, model.IsValidation(err))

	a, err := env.svc.Assignments.Create(ctx, AssignmentInput{ItemID: item.ID, OrganizationID: org.ID, CurrentQuantity: 0, EnoughThreshold: 5})
	require.NoError(t, err)
	assert.Equal(t, "Servo", a.Item.Name)
	assert.True(t, a.Low())

	_, err = env.svc.Assignments.Create(ctx, AssignmentInput{ItemID: item.ID, OrganizationID: org.ID, CurrentQuantity: 1, EnoughThreshold: 1})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.svc.Assignments.Create(ctx, AssignmentInput{ItemID: item.ID + 50, OrganizationID: org.ID, CurrentQuantity: 1, EnoughThreshold: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	// patching itself does not trip the uniqueness check
	got, err := env.svc.Assignments.Crud.Patch(ctx, a, map[string]any{"current_quantity": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, got.CurrentQuantity)
	assert.False(t, got.Low())
}

func TestPatchAppliesOnlyChangedPatchableKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	item := env.item(t, alice, "Servo")
	env.item(t, alice, "Motor")

	got, err := env.svc.Items.Crud.Patch(ctx, item, map[string]any{
		"id":          999,
		"name":        "Servo",
		"user_id":     12,
		"description": "9g micro servo",
	})
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, alice.ID, got.UserID)
	assert.Equal(t, "9g micro servo", got.Description)

	rec, err := env.svc.Items.Crud.Get(ctx, item.ID)
	require.NoError(t, err)
	_, err = env.svc.Items.Crud.Patch(ctx, rec, map[string]any{"name": "Motor"})
	assert.ErrorIs(t, err, ErrConflict)

	rec, err = env.svc.Items.Crud.Get(ctx, item.ID)
	require.NoError(t, err)
	_, err = env.svc.Items.Crud.Patch(ctx, rec, map[string]any{"is_public": "yes"})
	assert.True(t, model.IsValidation(err))

	rec, err = env.svc.Items.Crud.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Servo", rec.Name)
	assert.False(t, rec.IsPublic)
}

func TestPatchTrimsNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	env.item(t, alice, "Servo")
	motor := env.item(t, alice, "Motor")

	_, err := env.svc.Items.Crud.Patch(ctx, motor, map[string]any{"name": "Servo "})
	assert.ErrorIs(t, err, ErrConflict)

	rec, err := env.svc.Items.Crud.Get(ctx, motor.ID)
	require.NoError(t, err)
	got, err := env.svc.Items.Crud.Patch(ctx, rec, map[string]any{"name": "  Gear "})
	require.NoError(t, err)
	assert.Equal(t, "Gear", got.Name)

	env.org(t, alice, "Robotics")
	drones := env.org(t, alice, "Drones")
	_, err = env.svc.Organizations.Crud.Patch(ctx, drones, map[string]any{"name": " Robotics"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteItemLogsEveryOrganization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	first := env.org(t, alice, "Robotics")
	second := env.org(t, alice, "Drones")
	third := env.org(t, alice, "Unrelated")

	item, assignment, err := env.svc.Items.AddNewItem(ctx, alice,
		ItemInput{Name: "Servo", PartNumber: "SG90"},
		AssignmentInput{OrganizationID: first.ID, CurrentQuantity: 3, EnoughThreshold: 2})
	require.NoError(t, err)
	assert.Equal(t, item.ID, assignment.Item.ID)
	_, err = env.svc.Assignments.Create(ctx, AssignmentInput{ItemID: item.ID, OrganizationID: second.ID, CurrentQuantity: 1, EnoughThreshold: 1})
	require.NoError(t, err)

	rec, err := env.svc.Items.Crud.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NoError(t, env.svc.Items.Crud.Delete(ctx, rec))

	for _, org := range []*model.Organization{first, second} {
		logs := env.logs(t, org.ID)
		require.Len(t, logs, 1, org.Name)
		assert.Equal(t, []string{activity.ItemRemovedHeadline, "Name: Servo", "Part #: SG90"}, []string(logs[0].Contents))
	}
	assert.Empty(t, env.logs(t, third.ID))

	left, err := (&rdb.AssignmentRepository{DB: env.db}).ListByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = env.svc.Items.Crud.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddNewItemRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	org := env.org(t, alice, "Robotics")

	_, _, err := env.svc.Items.AddNewItem(ctx, alice,
		ItemInput{Name: "Servo"},
		AssignmentInput{OrganizationID: org.ID, CurrentQuantity: -1, EnoughThreshold: 1})
	require.Error(t, err)

	taken, err := (&rdb.ItemRepository{DB: env.db}).NameTaken(ctx, "Servo", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestDeleteOrganizationCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")
	org := env.org(t, alice, "Robotics")
	item := env.item(t, alice, "Servo")

	_, err := env.svc.Memberships.Join(ctx, bob.ID, org.ID)
	require.NoError(t, err)
	_, err = env.svc.Requests.Submit(ctx, carol.ID, org.ID, "")
	require.NoError(t, err)
	_, err = env.svc.Assignments.Create(ctx, AssignmentInput{ItemID: item.ID, OrganizationID: org.ID, CurrentQuantity: 1, EnoughThreshold: 1})
	require.NoError(t, err)
	_, err = env.svc.Logs.Record(ctx, org.ID, []string{"hello"})
	require.NoError(t, err)

	rec, err := env.svc.Organizations.Crud.Get(ctx, org.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Memberships, 2)
	require.NoError(t, env.svc.Organizations.Crud.Delete(ctx, rec))

	for _, table := range []any{&model.Membership{}, &model.Assignment{}, &model.Request{}, &model.OrganizationLog{}, &model.Organization{}} {
		var n int64
		require.NoError(t, env.db.Model(table).Count(&n).Error)
		assert.Zero(t, n, "%T", table)
	}
	_, err = env.svc.Items.Crud.Get(ctx, item.ID)
	assert.NoError(t, err)
}

func TestReportItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	item := env.item(t, alice, "Servo")

	err := env.svc.Items.Report(ctx, alice, item.ID, "too short")
	assert.True(t, model.IsValidation(err))

	text := strings.Repeat("The gear train is stripped. ", 3)
	assert.ErrorIs(t, env.svc.Items.Report(ctx, alice, item.ID+9, text), ErrNotFound)

	require.NoError(t, env.svc.Items.Report(ctx, alice, item.ID, text))
	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"support@itemizer.test"}, sent[0].Recipients)
	assert.Contains(t, sent[0].HTML, "Servo")
}

func TestInventoryReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	org := env.org(t, alice, "Robotics")
	_, _, err := env.svc.Items.AddNewItem(ctx, alice, ItemInput{Name: "Servo"},
		AssignmentInput{OrganizationID: org.ID, CurrentQuantity: 1, EnoughThreshold: 4})
	require.NoError(t, err)

	require.NoError(t, env.svc.Organizations.Report(ctx, org, alice))
	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{alice.Email}, sent[0].Recipients)
	assert.Contains(t, sent[0].HTML, "LOW")
}
