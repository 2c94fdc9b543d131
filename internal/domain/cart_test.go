package domain

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string) CartItem {
	return CartItem{
		ID:             id,
		Name:           "name-" + id,
		ImageURL:       "https://files.example.com/" + id + ".png",
		Price:          1000,
		Description:    "description of " + id,
		DefaultPriceID: "price_" + id,
	}
}

func ids(c *Cart) []string {
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.ID
	}
	return out
}

func TestAdd_SameIDTwice_KeepsSingleEntry(t *testing.T) {
	cart := NewCart("session-1")

	first := CartItem{ID: "p1", Name: "Shirt", Price: 1000, DefaultPriceID: "price_1"}
	assert.True(t, cart.Add(first))
	assert.False(t, cart.Add(CartItem{ID: "p1", Name: "Other name", Price: 5}))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, first, cart.Items[0])
}

func TestAdd_RandomSequences_NeverDuplicates(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		cart := NewCart("s")
		for i := 0; i < 50; i++ {
			cart.Add(item(fmt.Sprintf("p%d", rnd.Intn(10))))
		}

		seen := make(map[string]bool)
		for _, it := range cart.Items {
			require.False(t, seen[it.ID], "duplicate id %s", it.ID)
			seen[it.ID] = true
		}
	}
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	cart := NewCart("s")
	for _, id := range []string{"c", "a", "b", "a", "c", "d"} {
		cart.Add(item(id))
	}

	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(cart))
}

func TestContains_AfterAddAndRemove(t *testing.T) {
	cart := NewCart("s")
	assert.False(t, cart.Contains("p1"))

	cart.Add(item("p1"))
	assert.True(t, cart.Contains("p1"))

	assert.True(t, cart.Remove("p1"))
	assert.False(t, cart.Contains("p1"))
}

func TestRemove_KeepsOrderOfRemaining(t *testing.T) {
	cart := NewCart("s")
	for _, id := range []string{"a", "b", "c", "d"} {
		cart.Add(item(id))
	}

	cart.Remove("b")
	assert.Equal(t, []string{"a", "c", "d"}, ids(cart))

	cart.Remove("d")
	assert.Equal(t, []string{"a", "c"}, ids(cart))
}

func TestRemove_Absent_IsNoop(t *testing.T) {
	cart := NewCart("s")
	cart.Add(item("a"))

	assert.False(t, cart.Remove("zzz"))
	assert.Equal(t, []string{"a"}, ids(cart))
}

func TestRemove_DoesNotMutateClone(t *testing.T) {
	cart := NewCart("s")
	for _, id := range []string{"a", "b", "c"} {
		cart.Add(item(id))
	}
	snapshot := cart.Clone()

	cart.Remove("a")

	assert.Equal(t, []string{"a", "b", "c"}, ids(snapshot))
	assert.Equal(t, []string{"b", "c"}, ids(cart))
}

func TestClear(t *testing.T) {
	cart := NewCart("s")
	cart.Add(item("a"))
	cart.Add(item("b"))

	cart.Clear()

	assert.Equal(t, 0, cart.Len())
	assert.False(t, cart.Contains("a"))
	assert.True(t, cart.Add(item("a")))
}

func TestProduct_CartItem_CopiesAllFields(t *testing.T) {
	p := Product{
		ID:             "prod_1",
		Name:           "Tee",
		ImageURL:       "u1",
		Price:          7990,
		Description:    "cotton",
		DefaultPriceID: "price_1",
	}

	assert.Equal(t, CartItem{
		ID:             "prod_1",
		Name:           "Tee",
		ImageURL:       "u1",
		Price:          7990,
		Description:    "cotton",
		DefaultPriceID: "price_1",
	}, p.CartItem())
}
