package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

// The email and username columns must collate binary so that lookups
// and the uniqueness constraints are case-sensitive. MySQL's default
// utf8mb4 collation is accent- and case-insensitive, which would make
// Alice@example.com and alice@example.com the same account.
func TestUserIdentityColumnsCollateBinary(t *testing.T) {
	s, err := schema.Parse(&User{}, &sync.Map{}, schema.NamingStrategy{})
	assert.NoError(t, err)

	for _, column := range []string{"Email", "Username"} {
		field := s.LookUpField(column)
		if assert.NotNil(t, field, column) {
			assert.Equal(t, "varchar(255) COLLATE utf8mb4_bin", field.TagSettings["TYPE"], column)
		}
	}
}
