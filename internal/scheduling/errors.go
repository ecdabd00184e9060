package scheduling

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrSlotNotFound         = errors.New("slot not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")

	ErrInvalidRange = errors.New("invalid range: from must not be after to")

	// Domain rule violations keep the messages users of the original SGHSS
	// system see.
	ErrOutsidePolicy       = errors.New("O horário solicitado não está dentro da política de agendamento do profissional.")
	ErrSlotConflict        = errors.New("Já existe um agendamento conflitante para o horário solicitado.")
	ErrAppointmentTerminal = errors.New("Consultas concluídas ou canceladas não podem ter o status alterado.")
	ErrNotConfirmed        = errors.New("Apenas consultas confirmadas podem ser concluídas.")

	ErrScheduleBusy  = errors.New("schedule is currently being booked, please retry")
	ErrLinkForbidden = errors.New("appointment link can only be accessed by its own patient")
	ErrNoLink        = errors.New("appointment has no teleconsultation link")
)
