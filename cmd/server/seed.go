package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/atempo/hr-engine/auth"
	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

// seedUsers are the development accounts created by HR_SEED=true.
// Idempotent: existing usernames are left alone.
var seedUsers = []struct {
	username string
	email    string
	fullName string
	password string
	role     hr.Role
}{
	{"admin", "admin@example.com", "HR Administrator", "admin123", hr.RoleRRHH},
	{"jdoe", "jdoe@example.com", "John Doe", "employee123", hr.RoleEmployee},
	{"asmith", "asmith@example.com", "Alice Smith", "employee123", hr.RoleEmployee},
}

func seed(ctx context.Context, st store.Store, log *logrus.Logger) error {
	for _, s := range seedUsers {
		existing, err := st.GetUserByUsername(ctx, s.username)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		hashed, err := auth.HashPassword(s.password)
		if err != nil {
			return err
		}
		user := &hr.User{
			ID:             uuid.New(),
			Username:       s.username,
			Email:          s.email,
			FullName:       s.fullName,
			HashedPassword: hashed,
			Role:           s.role,
			IsActive:       true,
		}
		if err := st.CreateUser(ctx, user); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"username": s.username, "role": s.role}).Info("seeded user")
	}
	return nil
}
