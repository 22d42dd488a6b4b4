package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/visitcare/visitation-backend/internal/models"
)

// MemberRepository handles member database operations
type MemberRepository struct {
	db DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db DB) *MemberRepository {
	return &MemberRepository{
		db: db,
	}
}

// CreateMember creates a new member with the default MEMBER role
func (r *MemberRepository) CreateMember(name, email, passwordHash string) (*models.Member, error) {
	return r.createWithRole(name, email, passwordHash, models.RoleMember)
}

// CreateAdmin creates a new member with the ADMIN role
func (r *MemberRepository) CreateAdmin(name, email, passwordHash string) (*models.Member, error) {
	return r.createWithRole(name, email, passwordHash, models.RoleAdmin)
}

func (r *MemberRepository) createWithRole(name, email, passwordHash string, role models.MemberRole) (*models.Member, error) {
	member := &models.Member{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO members (
			id, name, email, password_hash, role, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		member.ID,
		member.Name,
		member.Email,
		member.PasswordHash,
		member.Role,
		member.Active,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return member, nil
}

// GetByEmail fetches a member by email address
func (r *MemberRepository) GetByEmail(email string) (*models.Member, error) {
	var member models.Member
	query := `SELECT * FROM members WHERE email = $1`

	err := r.db.Get(&member, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("member not found")
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	return &member, nil
}

// GetByID fetches a member by ID
func (r *MemberRepository) GetByID(id uuid.UUID) (*models.Member, error) {
	var member models.Member
	query := `SELECT * FROM members WHERE id = $1`

	err := r.db.Get(&member, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("member not found")
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	return &member, nil
}

// ListMembers returns all members ordered by name
func (r *MemberRepository) ListMembers() ([]models.Member, error) {
	members := []models.Member{}
	query := `SELECT * FROM members ORDER BY name ASC`

	err := r.db.Select(&members, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}

// ListActiveMembers returns all active members ordered by name
func (r *MemberRepository) ListActiveMembers() ([]models.Member, error) {
	members := []models.Member{}
	query := `SELECT * FROM members WHERE active = true ORDER BY name ASC`

	err := r.db.Select(&members, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active members: %w", err)
	}

	return members, nil
}

// UpdateRole changes a member's role
func (r *MemberRepository) UpdateRole(id uuid.UUID, role models.MemberRole) error {
	query := `UPDATE members SET role = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, role, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("member not found")
	}

	return nil
}

// SetActive activates or deactivates a member
func (r *MemberRepository) SetActive(id uuid.UUID, active bool) error {
	query := `UPDATE members SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update active status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("member not found")
	}

	return nil
}

// UpdatePassword replaces a member's password hash
func (r *MemberRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	query := `UPDATE members SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("member not found")
	}

	return nil
}

// UpdateName updates a member's display name
func (r *MemberRepository) UpdateName(id uuid.UUID, name string) error {
	query := `UPDATE members SET name = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, name, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update name: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("member not found")
	}

	return nil
}

// UpdateLastLogin records a successful sign-in
func (r *MemberRepository) UpdateLastLogin(id uuid.UUID) error {
	query := `UPDATE members SET last_login_at = $1, updated_at = $1 WHERE id = $2`

	_, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// ListAdmins returns all active admins
func (r *MemberRepository) ListAdmins() ([]models.Member, error) {
	members := []models.Member{}
	query := `SELECT * FROM members WHERE role = $1 AND active = true ORDER BY name ASC`

	err := r.db.Select(&members, query, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	return members, nil
}
