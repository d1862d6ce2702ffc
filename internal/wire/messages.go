package wire

import "time"

type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

func (m *RegisterRequest) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Email)
	e.string(2, m.Password)
	e.string(3, m.Name)
	return e.b
}

func (m *RegisterRequest) UnmarshalWire(b []byte) error {
	*m = RegisterRequest{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Email = f.str()
		case 2:
			m.Password = f.str()
		case 3:
			m.Name = f.str()
		}
		return nil
	})
}

type RegisterResponse struct {
	UserId int64
	Token  string
}

func (m *RegisterResponse) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.UserId)
	e.string(2, m.Token)
	return e.b
}

func (m *RegisterResponse) UnmarshalWire(b []byte) error {
	*m = RegisterResponse{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.UserId = f.int64()
		case 2:
			m.Token = f.str()
		}
		return nil
	})
}

type LoginRequest struct {
	Email    string
	Password string
}

func (m *LoginRequest) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Email)
	e.string(2, m.Password)
	return e.b
}

func (m *LoginRequest) UnmarshalWire(b []byte) error {
	*m = LoginRequest{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Email = f.str()
		case 2:
			m.Password = f.str()
		}
		return nil
	})
}

type LoginResponse struct {
	Token  string
	UserId int64
	Name   string
	Role   string
}

func (m *LoginResponse) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Token)
	e.int64(2, m.UserId)
	e.string(3, m.Name)
	e.string(4, m.Role)
	return e.b
}

func (m *LoginResponse) UnmarshalWire(b []byte) error {
	*m = LoginResponse{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Token = f.str()
		case 2:
			m.UserId = f.int64()
		case 3:
			m.Name = f.str()
		case 4:
			m.Role = f.str()
		}
		return nil
	})
}

type PromoteUserRequest struct {
	UserId int64
}

func (m *PromoteUserRequest) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.UserId)
	return e.b
}

func (m *PromoteUserRequest) UnmarshalWire(b []byte) error {
	*m = PromoteUserRequest{}
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.UserId = f.int64()
		}
		return nil
	})
}

// MessageResponse carries the human readable result of a transition.
type MessageResponse struct {
	Message string
}

func (m *MessageResponse) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Message)
	return e.b
}

func (m *MessageResponse) UnmarshalWire(b []byte) error {
	*m = MessageResponse{}
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Message = f.str()
		}
		return nil
	})
}

type Appointment struct {
	Id             int64
	ClientId       int64
	AvailabilityId int64
	Status         string
	CreatedAt      time.Time
}

func (m *Appointment) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.Id)
	e.int64(2, m.ClientId)
	e.int64(3, m.AvailabilityId)
	e.string(4, m.Status)
	e.time(5, m.CreatedAt)
	return e.b
}

func (m *Appointment) UnmarshalWire(b []byte) error {
	*m = Appointment{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Id = f.int64()
		case 2:
			m.ClientId = f.int64()
		case 3:
			m.AvailabilityId = f.int64()
		case 4:
			m.Status = f.str()
		case 5:
			m.CreatedAt, err = f.time()
		}
		return err
	})
}

type CreateAppointmentRequest struct {
	AvailabilityId int64
}

func (m *CreateAppointmentRequest) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.AvailabilityId)
	return e.b
}

func (m *CreateAppointmentRequest) UnmarshalWire(b []byte) error {
	*m = CreateAppointmentRequest{}
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.AvailabilityId = f.int64()
		}
		return nil
	})
}

type CreateAppointmentResponse struct {
	Message     string
	Appointment *Appointment
}

func (m *CreateAppointmentResponse) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Message)
	if m.Appointment != nil {
		e.message(2, m.Appointment)
	}
	return e.b
}

func (m *CreateAppointmentResponse) UnmarshalWire(b []byte) error {
	*m = CreateAppointmentResponse{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Message = f.str()
		case 2:
			m.Appointment = &Appointment{}
			return m.Appointment.UnmarshalWire(f.b)
		}
		return nil
	})
}

// AppointmentRequest addresses one appointment for confirm and cancel.
type AppointmentRequest struct {
	AppointmentId int64
}

func (m *AppointmentRequest) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.AppointmentId)
	return e.b
}

func (m *AppointmentRequest) UnmarshalWire(b []byte) error {
	*m = AppointmentRequest{}
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.AppointmentId = f.int64()
		}
		return nil
	})
}

type Contact struct {
	Id    int64
	Email string
}

func (m *Contact) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.Id)
	e.string(2, m.Email)
	return e.b
}

func (m *Contact) UnmarshalWire(b []byte) error {
	*m = Contact{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Id = f.int64()
		case 2:
			m.Email = f.str()
		}
		return nil
	})
}

type Slot struct {
	Date         string
	StartTime    time.Time
	EndTime      time.Time
	Nutritionist *Contact
}

func (m *Slot) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Date)
	e.time(2, m.StartTime)
	e.time(3, m.EndTime)
	if m.Nutritionist != nil {
		e.message(4, m.Nutritionist)
	}
	return e.b
}

func (m *Slot) UnmarshalWire(b []byte) error {
	*m = Slot{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Date = f.str()
		case 2:
			m.StartTime, err = f.time()
		case 3:
			m.EndTime, err = f.time()
		case 4:
			m.Nutritionist = &Contact{}
			err = m.Nutritionist.UnmarshalWire(f.b)
		}
		return err
	})
}

type ClientAppointment struct {
	Id           int64
	Status       string
	CreatedAt    time.Time
	Availability *Slot
}

func (m *ClientAppointment) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.Id)
	e.string(2, m.Status)
	e.time(3, m.CreatedAt)
	if m.Availability != nil {
		e.message(4, m.Availability)
	}
	return e.b
}

func (m *ClientAppointment) UnmarshalWire(b []byte) error {
	*m = ClientAppointment{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Id = f.int64()
		case 2:
			m.Status = f.str()
		case 3:
			m.CreatedAt, err = f.time()
		case 4:
			m.Availability = &Slot{}
			err = m.Availability.UnmarshalWire(f.b)
		}
		return err
	})
}

type ListMyAppointmentsRequest struct{}

func (m *ListMyAppointmentsRequest) MarshalWire() []byte { return nil }

func (m *ListMyAppointmentsRequest) UnmarshalWire(b []byte) error {
	return walk(b, func(field) error { return nil })
}

type ListMyAppointmentsResponse struct {
	Appointments []*ClientAppointment
}

func (m *ListMyAppointmentsResponse) MarshalWire() []byte {
	var e encoder
	for _, a := range m.Appointments {
		e.message(1, a)
	}
	return e.b
}

func (m *ListMyAppointmentsResponse) UnmarshalWire(b []byte) error {
	*m = ListMyAppointmentsResponse{}
	return walk(b, func(f field) error {
		if f.num == 1 {
			a := &ClientAppointment{}
			if err := a.UnmarshalWire(f.b); err != nil {
				return err
			}
			m.Appointments = append(m.Appointments, a)
		}
		return nil
	})
}

// ListAgendaRequest dates are calendar days formatted as YYYY-MM-DD.
type ListAgendaRequest struct {
	Date      string
	StartDate string
	EndDate   string
	Page      int32
	PageSize  int32
}

func (m *ListAgendaRequest) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Date)
	e.string(2, m.StartDate)
	e.string(3, m.EndDate)
	e.int32(4, m.Page)
	e.int32(5, m.PageSize)
	return e.b
}

func (m *ListAgendaRequest) UnmarshalWire(b []byte) error {
	*m = ListAgendaRequest{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Date = f.str()
		case 2:
			m.StartDate = f.str()
		case 3:
			m.EndDate = f.str()
		case 4:
			m.Page = f.int32()
		case 5:
			m.PageSize = f.int32()
		}
		return nil
	})
}

type AgendaAppointment struct {
	Id     int64
	Status string
	Client *Contact
}

func (m *AgendaAppointment) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.Id)
	e.string(2, m.Status)
	if m.Client != nil {
		e.message(3, m.Client)
	}
	return e.b
}

func (m *AgendaAppointment) UnmarshalWire(b []byte) error {
	*m = AgendaAppointment{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Id = f.int64()
		case 2:
			m.Status = f.str()
		case 3:
			m.Client = &Contact{}
			return m.Client.UnmarshalWire(f.b)
		}
		return nil
	})
}

type AgendaItem struct {
	AvailabilityId int64
	Date           string
	StartTime      time.Time
	EndTime        time.Time
	IsBooked       bool
	Appointment    *AgendaAppointment
}

func (m *AgendaItem) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.AvailabilityId)
	e.string(2, m.Date)
	e.time(3, m.StartTime)
	e.time(4, m.EndTime)
	e.bool(5, m.IsBooked)
	if m.Appointment != nil {
		e.message(6, m.Appointment)
	}
	return e.b
}

func (m *AgendaItem) UnmarshalWire(b []byte) error {
	*m = AgendaItem{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.AvailabilityId = f.int64()
		case 2:
			m.Date = f.str()
		case 3:
			m.StartTime, err = f.time()
		case 4:
			m.EndTime, err = f.time()
		case 5:
			m.IsBooked = f.bool()
		case 6:
			m.Appointment = &AgendaAppointment{}
			err = m.Appointment.UnmarshalWire(f.b)
		}
		return err
	})
}

type ListAgendaResponse struct {
	Items      []*AgendaItem
	Total      int64
	Page       int32
	PageSize   int32
	TotalPages int32
}

func (m *ListAgendaResponse) MarshalWire() []byte {
	var e encoder
	for _, it := range m.Items {
		e.message(1, it)
	}
	e.int64(2, m.Total)
	e.int32(3, m.Page)
	e.int32(4, m.PageSize)
	e.int32(5, m.TotalPages)
	return e.b
}

func (m *ListAgendaResponse) UnmarshalWire(b []byte) error {
	*m = ListAgendaResponse{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			it := &AgendaItem{}
			if err := it.UnmarshalWire(f.b); err != nil {
				return err
			}
			m.Items = append(m.Items, it)
		case 2:
			m.Total = f.int64()
		case 3:
			m.Page = f.int32()
		case 4:
			m.PageSize = f.int32()
		case 5:
			m.TotalPages = f.int32()
		}
		return nil
	})
}

type UserInfo struct {
	Id    int64
	Email string
	Name  string
	Role  string
}

func (m *UserInfo) MarshalWire() []byte {
	var e encoder
	e.int64(1, m.Id)
	e.string(2, m.Email)
	e.string(3, m.Name)
	e.string(4, m.Role)
	return e.b
}

func (m *UserInfo) UnmarshalWire(b []byte) error {
	*m = UserInfo{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Id = f.int64()
		case 2:
			m.Email = f.str()
		case 3:
			m.Name = f.str()
		case 4:
			m.Role = f.str()
		}
		return nil
	})
}

type PromoteUserResponse struct {
	Message string
	User    *UserInfo
}

func (m *PromoteUserResponse) MarshalWire() []byte {
	var e encoder
	e.string(1, m.Message)
	if m.User != nil {
		e.message(2, m.User)
	}
	return e.b
}

func (m *PromoteUserResponse) UnmarshalWire(b []byte) error {
	*m = PromoteUserResponse{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Message = f.str()
		case 2:
			m.User = &UserInfo{}
			return m.User.UnmarshalWire(f.b)
		}
		return nil
	})
}
