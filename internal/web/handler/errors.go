package handler

import (
	"errors"

	"github.com/Jirawatp058/random-buddy/internal/model"
)

// userMessage maps a domain error to the text shown in a flash message
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrDuplicateName):
		return "ชื่อนี้ลงทะเบียนไปแล้ว ลองใช้ชื่ออื่น"
	case errors.Is(err, model.ErrInvalidParticipant):
		return "กรุณากรอกชื่อ รหัสผ่าน และไซส์ให้ครบ"
	case errors.Is(err, model.ErrParticipantNotFound):
		return "ไม่พบผู้ลงทะเบียนชื่อนี้"
	case errors.Is(err, model.ErrBadCredential):
		return "ชื่อหรือรหัสผ่านไม่ถูกต้อง"
	case errors.Is(err, model.ErrRegistrationClosed):
		return "ปิดรับลงทะเบียนแล้ว"
	case errors.Is(err, model.ErrAlreadyMatched):
		return "จับคู่ไปแล้ว ต้องรีเซ็ตก่อนจึงจะจับคู่ใหม่ได้"
	case errors.Is(err, model.ErrNotMatched):
		return "ยังไม่ได้จับคู่ รอผู้ดูแลก่อนนะ"
	case errors.Is(err, model.ErrInsufficientParticipants):
		return "ต้องมีผู้ลงทะเบียนอย่างน้อย 2 คน"
	case errors.Is(err, model.ErrInfeasible):
		return "เงื่อนไขห้ามจับคู่ทำให้จับคู่ไม่ได้ ลองลบบางคู่ออก"
	case errors.Is(err, model.ErrConflict):
		return "มีการแก้ไขข้อมูลพร้อมกัน ลองใหม่อีกครั้ง"
	}
	return "เกิดข้อผิดพลาด ลองใหม่อีกครั้ง"
}
