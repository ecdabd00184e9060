package hospitalization

import "errors"

var (
	ErrPatientNotFound         = errors.New("patient not found")
	ErrBedNotFound             = errors.New("bed not found")
	ErrHospitalizationNotFound = errors.New("hospitalization not found")

	// Domain rule violations keep the messages users of the original SGHSS
	// system see.
	ErrBedNotAvailable           = errors.New("A cama informada não está disponível para internação.")
	ErrAlreadyHospitalized       = errors.New("O paciente já possui uma internação ativa.")
	ErrNoActiveHospitalization   = errors.New("O paciente não possui uma internação ativa.")
	ErrHospitalizationWithoutBed = errors.New("A internação ativa não está associada a nenhuma cama.")
	ErrBedNotOccupied            = errors.New("A cama associada à internação ativa não está ocupada.")

	ErrBedNotReadyForMaintenance = errors.New("bed must be available to enter maintenance")
	ErrBedNotUnderMaintenance    = errors.New("bed is not under maintenance")
	ErrBedBusy                   = errors.New("bed is currently being updated, please retry")
)
