package xmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsListNormalizesAllThreeShapes(t *testing.T) {
	assert.Equal(t, []any{}, AsList(nil))
	assert.Equal(t, []any{M{"id": "p1"}}, AsList(M{"id": "p1"}))
	assert.Equal(t, []any{"a", "b"}, AsList([]any{"a", "b"}))
}

func TestRecordsWrapsTextEntries(t *testing.T) {
	recs := Records([]any{M{"id": "p1"}, "", "loose"})
	assert.Equal(t, []M{{"id": "p1"}, {}, {TextKey: "loose"}}, recs)
}

func TestTextReadsElementsAttributesAndLists(t *testing.T) {
	m := M{
		"@name": "Chocolate",
		"id":    " p1 ",
		"tags":  []any{"first", "second"},
		"price": M{"@currency": "EUR", TextKey: "2.50"},
	}
	assert.Equal(t, "Chocolate", m.Text("name"))
	assert.Equal(t, "p1", m.Text("id"))
	assert.Equal(t, "first", m.Text("tags"))
	assert.Equal(t, "2.50", m.Text("price"))
	assert.Equal(t, "", m.Text("missing"))
}

func TestEnsureConvertsTextIntoRecord(t *testing.T) {
	m := M{"cartList": ""}
	list := m.Ensure("cartList")
	list.SetRecords("cart", []M{{"userId": "u1"}})

	assert.Equal(t, M{"cartList": M{"cart": []any{M{"userId": "u1"}}}}, m)
	assert.Len(t, m.Map("cartList").Records("cart"), 1)
}

func TestEnsureReturnsFirstRecordOfList(t *testing.T) {
	first := M{"userId": "u1"}
	m := M{"cartList": []any{first, M{"userId": "u2"}}}
	got := m.Ensure("cartList")
	got["touched"] = "yes"
	assert.Equal(t, "yes", first["touched"])
}

func TestRootRequiresExpectedTag(t *testing.T) {
	_, ok := M{"users": ""}.Root("carts")
	assert.False(t, ok)

	body, ok := M{"carts": ""}.Root("carts")
	assert.True(t, ok)
	assert.NotNil(t, body)
}
