package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidNickname(t *testing.T) {
	valid := []string{"Ivan_Petrov", "A_B", "Anna_Karenina", "MacDonald_OBrien"}
	for _, s := range valid {
		assert.True(t, ValidNickname(s), s)
	}

	invalid := []string{
		"",
		"ivan_Petrov",   // first word must start uppercase
		"Ivan_petrov",   // second word must start uppercase
		"IvanPetrov",    // underscore required
		"Ivan__Petrov",  // single underscore only
		"Ivan_Petrov_X", // nothing after the second word
		" Ivan_Petrov",
		"Ivan_Petrov2",
		"Иван_Петров", // latin letters only
	}
	for _, s := range invalid {
		assert.False(t, ValidNickname(s), s)
	}
}
