package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook выгружает отчёт в xlsx: первый лист — по пользователям,
// второй — сводка и гранты, которые будут погашены этим циклом.
func WriteWorkbook(r *Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "users"); err != nil {
		return nil, err
	}
	sheet = "users"

	header := []interface{}{
		"user_id",
		"email",
		"name",
		"role",
		"used",
		"base_limit",
		"boost_amount",
		"real_limit",
		"percentage",
		"saved_boosts",
		"has_active_boost",
		"has_expired_boosts",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, u := range r.Users {
		excelRow := []interface{}{
			u.UserID,
			u.Email,
			u.Name,
			u.Role,
			u.Used,
			u.BaseLimit,
			u.BoostAmount,
			u.RealLimit,
			u.Percentage,
			u.SavedBoosts,
			u.HasActiveBoost,
			u.HasExpiredBoosts,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		row++
	}

	if err := writeSummarySheet(f, r); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeSummarySheet(f *excelize.File, r *Report) error {
	const sheet = "summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"cycle", r.Cycle},
		{"generated_at", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"total_users", r.Summary.TotalUsers},
		{"active_users", r.Summary.ActiveUsers},
		{"users_with_active_boost", r.Summary.UsersWithActiveBoost},
		{"users_with_expired_boosts", r.Summary.UsersWithExpiredBoosts},
		{"total_itineraries_used", r.Summary.TotalItinerariesUsed},
		{"avg_per_user", fmt.Sprintf("%.2f", r.Summary.AvgPerUser)},
		{"itineraries_today", r.Summary.ItinerariesToday},
	}
	row := 1
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
		row++
	}

	// Гранты под погашение — с суммой оплаты для аудита.
	row += 2
	header := []interface{}{"user_id", "email", "grants", "itineraries", "total_price"}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return err
	}
	row++
	for _, eb := range r.ExpiringBoosts {
		excelRow := []interface{}{eb.UserID, eb.Email, eb.Grants, eb.Itineraries, eb.TotalPrice}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return err
		}
		row++
	}
	return nil
}
