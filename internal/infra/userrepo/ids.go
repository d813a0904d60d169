package userrepo

import "github.com/google/uuid"

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
