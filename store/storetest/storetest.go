// Package storetest holds the behaviour every store.Backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/store"
)

// UserSchema is the schema used by Run.
var UserSchema = dstruct.MustNew(map[string]any{
	"id":      dstruct.KindID,
	"name":    dstruct.KindString,
	"age":     dstruct.KindInt,
	"joined":  dstruct.KindDateTime,
	"friends": []any{map[string]any{"nick": dstruct.KindString}},
})

// EventSchema has leaves a backend may not hand back as given: a
// datetime with sub-millisecond default and a float32.
var EventSchema = dstruct.MustNew(map[string]any{
	"id":    dstruct.KindID,
	"at":    dstruct.KindDateTime,
	"score": dstruct.KindFloat32,
	"n":     dstruct.KindInt32,
})

// NewUser builds a valid user document.
func NewUser(t *testing.T, name string, age int) *dstruct.Document {
	t.Helper()
	friend := UserSchema.Gen().Field("friends").MustBuild(map[string]any{"nick": name + "-friend"})
	d, err := dstruct.NewDocument(UserSchema, map[string]any{
		"name":    name,
		"age":     age,
		"joined":  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		"friends": []any{friend},
	})
	require.NoError(t, err)
	return d
}

// Run exercises a backend through a Collection. newBackend must return an
// empty backend; Run closes it.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Run("SaveGetKeepsHash", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		c := store.NewCollection("users", UserSchema, b)
		ctx := context.Background()

		d := NewUser(t, "ann", 31)
		key, err := c.Save(ctx, d)
		require.NoError(t, err)
		id, _ := d.Get("id")
		require.Equal(t, id.(primitive.ObjectID).Hex(), key)

		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, d.Hash(), got.Hash())
		require.NoError(t, got.Validate())
		nick, err := got.Get("friends.[0].nick")
		require.NoError(t, err)
		require.Equal(t, "ann-friend", nick)
	})

	t.Run("DefaultsRoundTrip", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		c := store.NewCollection("events", EventSchema, b)
		ctx := context.Background()

		clock := func() time.Time { return time.Date(2024, 3, 1, 10, 0, 5, 429971290, time.Local) }
		builder := dstruct.NewBuilder(dstruct.WithDefaults(dstruct.StandardDefaults().WithClock(clock)))
		d, err := dstruct.NewDocumentWith(builder, EventSchema, map[string]any{"score": float32(0.1)})
		require.NoError(t, err)
		now, err := dstruct.NewDocument(EventSchema, nil)
		require.NoError(t, err)

		for _, doc := range []*dstruct.Document{d, now} {
			key, err := c.Save(ctx, doc)
			require.NoError(t, err)
			got, err := c.Get(ctx, key)
			require.NoError(t, err)
			require.Equal(t, doc.Hash(), got.Hash())
			require.Empty(t, doc.Diff(got))
			require.NoError(t, got.Validate())
		}

		at, err := d.Get("at")
		require.NoError(t, err)
		require.True(t, at.(time.Time).Equal(time.Date(2024, 3, 1, 10, 0, 5, 429000000, time.Local)), "at = %v", at)
		require.Equal(t, time.UTC, at.(time.Time).Location())
		score, err := d.Get("score")
		require.NoError(t, err)
		require.Equal(t, float32(0.1), score)

		found, err := c.Find(ctx, "at", clock())
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, d.Hash(), found[0].Hash())
	})

	t.Run("SaveRejectsInvalid", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		c := store.NewCollection("users", UserSchema, b)
		ctx := context.Background()

		d := NewUser(t, "bo", 3)
		require.NoError(t, d.Delete("name"))
		_, err := c.Save(ctx, d)
		require.ErrorIs(t, err, dstruct.ErrValidation)
		keys, err := c.Keys(ctx)
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("Overwrite", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		c := store.NewCollection("users", UserSchema, b)
		ctx := context.Background()

		d := NewUser(t, "cy", 20)
		key, err := c.Save(ctx, d)
		require.NoError(t, err)
		require.NoError(t, d.Set("age", 21))
		_, err = c.Save(ctx, d)
		require.NoError(t, err)

		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, d.Hash(), got.Hash())
	})

	t.Run("NotFound", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		c := store.NewCollection("users", UserSchema, b)
		ctx := context.Background()

		_, err := c.Get(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, c.Delete(ctx, "nope"), store.ErrNotFound)
	})

	t.Run("FindAndAll", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		c := store.NewCollection("users", UserSchema, b)
		other := store.NewCollection("others", UserSchema, b)
		ctx := context.Background()

		for i, name := range []string{"ann", "bo", "cy"} {
			_, err := c.Save(ctx, NewUser(t, name, 30+i%2))
			require.NoError(t, err)
		}
		_, err := other.Save(ctx, NewUser(t, "dee", 30))
		require.NoError(t, err)

		all, err := c.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		found, err := c.Find(ctx, "age", 30)
		require.NoError(t, err)
		require.Len(t, found, 2)

		found, err = c.Find(ctx, "friends.[0].nick", "bo-friend")
		require.NoError(t, err)
		require.Len(t, found, 1)
		name, _ := found[0].Get("name")
		require.Equal(t, "bo", name)

		_, err = c.Find(ctx, "a..b", 1)
		require.ErrorIs(t, err, dstruct.ErrPath)

		keys, err := c.Keys(ctx)
		require.NoError(t, err)
		require.IsIncreasing(t, keys)

		require.NoError(t, c.Delete(ctx, keys[0]))
		all, err = c.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})
}
