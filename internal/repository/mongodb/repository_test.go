package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMongoDBRepository_RejectsInvalidURI(t *testing.T) {
	_, err := NewMongoDBRepository(context.Background(), "not-a-mongo-uri", "cellar")
	require.Error(t, err)
}
