package services

import (
	"context"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
	"flavorfix/internal/validation"

	"github.com/google/uuid"
)

// AddressInput is the body of an address create or update.
type AddressInput struct {
	Type      string   `json:"type" validate:"omitempty,oneof=home work other"`
	Address   string   `json:"address" validate:"required"`
	Landmark  string   `json:"landmark"`
	City      string   `json:"city"`
	Pincode   string   `json:"pincode"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	IsDefault bool     `json:"isDefault"`
}

func (in AddressInput) toAddress(id string) models.Address {
	addrType := in.Type
	if addrType == "" {
		addrType = models.AddressHome
	}
	return models.Address{
		ID:        id,
		Type:      addrType,
		Address:   in.Address,
		Landmark:  in.Landmark,
		City:      in.City,
		Pincode:   in.Pincode,
		Lat:       in.Lat,
		Lng:       in.Lng,
		IsDefault: in.IsDefault,
	}
}

// AddressService manages the address book embedded in a user record. Every
// operation loads the user, edits the list and saves the whole record, so
// clearing the previous default happens in the same write.
type AddressService struct {
	userRepo repositories.UserRepository
}

func NewAddressService(userRepo repositories.UserRepository) *AddressService {
	return &AddressService{userRepo: userRepo}
}

func (s *AddressService) List(ctx context.Context, userID string) ([]models.Address, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return addressesOf(user), nil
}

func (s *AddressService) Add(ctx context.Context, userID string, in AddressInput) ([]models.Address, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Addresses = append(user.Addresses, in.toAddress(uuid.New().String()))
	if in.IsDefault {
		user.ClearDefaultAddress(len(user.Addresses) - 1)
	}
	return s.save(ctx, user)
}

func (s *AddressService) Update(ctx context.Context, userID, addressID string, in AddressInput) ([]models.Address, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, idx, err := s.load(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	user.Addresses[idx] = in.toAddress(addressID)
	if in.IsDefault {
		user.ClearDefaultAddress(idx)
	}
	return s.save(ctx, user)
}

func (s *AddressService) Delete(ctx context.Context, userID, addressID string) ([]models.Address, error) {
	user, idx, err := s.load(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	user.Addresses = append(user.Addresses[:idx], user.Addresses[idx+1:]...)
	return s.save(ctx, user)
}

func (s *AddressService) SetDefault(ctx context.Context, userID, addressID string) ([]models.Address, error) {
	user, idx, err := s.load(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	user.Addresses[idx].IsDefault = true
	user.ClearDefaultAddress(idx)
	return s.save(ctx, user)
}

func (s *AddressService) load(ctx context.Context, userID, addressID string) (*models.User, int, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, -1, err
	}
	idx := user.AddressIndex(addressID)
	if idx < 0 {
		return nil, -1, apperrors.NotFound("address")
	}
	return user, idx, nil
}

func (s *AddressService) save(ctx context.Context, user *models.User) ([]models.Address, error) {
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return addressesOf(user), nil
}

func addressesOf(user *models.User) []models.Address {
	if user.Addresses == nil {
		return []models.Address{}
	}
	return user.Addresses
}
