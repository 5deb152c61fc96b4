package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Regenerates the sample workbooks under testdata/. Run from the repo root:
//
//	go run scripts/generate_xlsx_fixtures.go
func main() {
	generateCardSalesFixture()
	generateBankPurchaseFixture()
	generateDecoratedSalesFixture()
	fmt.Println("\n✅ All XLSX fixtures generated successfully!")
}

// generateCardSalesFixture mimics a card-terminal sales export: clean header
// in row 1, Korean date text, comma-grouped amounts.
func generateCardSalesFixture() {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"거래일시", "상호명", "승인금액", "구분", "결제수단", "비고"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	data := [][]interface{}{
		{"2024년 1월 15일", "점심 매출", "1,250,000", "식사", "카드", ""},
		{"2024년 1월 15일", "저녁 매출", "2,380,000", "식사", "카드", ""},
		{"2024년 1월 16일", "점심 매출", "980,000", "식사", "현금", ""},
		{"2024년 1월 16일", "배달의민족 정산", "540,000", "배달", "카드", "주간 정산"},
		{"2024년 1월 17일", "단체 예약", "3,200,000", "식사", "카드", "20명"},
		{"2024년 1월 17일", "환불", "-45,000", "식사", "카드", "고객 변심"},
	}

	for rowIdx, row := range data {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	path := filepath.Join("testdata", "card_sales_sample.xlsx")
	if err := f.SaveAs(path); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✓ Generated", path)
}

// generateBankPurchaseFixture mimics an internet-banking withdrawal export:
// ISO dates, plain numeric amounts.
func generateBankPurchaseFixture() {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"거래일시", "보낸분/받는분", "출금액", "구분", "송금메모"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	data := [][]interface{}{
		{"2024-01-15", "한돈유통", 850000, "식자재", "삼겹살 20kg"},
		{"2024-01-15", "김알바", 120000, "인건비", "주말 근무"},
		{"2024-01-16", "수도요금", 64000, "공과금", ""},
		{"2024-01-16", "급구알바", 150000, "인건비(급구)", "당일 대타"},
		{"2024-01-17", "채소도매", 230000, "식자재", ""},
		{"2024-01-17", "주류도매상", 410000, "주류", ""},
	}

	for rowIdx, row := range data {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	path := filepath.Join("testdata", "bank_purchase_sample.xlsx")
	if err := f.SaveAs(path); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✓ Generated", path)
}

// generateDecoratedSalesFixture buries the header under a title block and
// blank rows the way POS exports often do, to exercise header detection.
func generateDecoratedSalesFixture() {
	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "매출 내역서")
	f.SetCellValue(sheet, "A2", "조회기간: 2024-01-15 ~ 2024-01-17")
	// row 3 left blank on purpose

	headers := []string{"일자", "내역", "금액", "결제수단"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}

	data := [][]interface{}{
		{"2024-01-15", "홀 매출", "1,100,000", "카드"},
		{"2024-01-16", "홀 매출", "890,000", "현금"},
		{"2024-01-17", "포장 매출", "310,000", "카드"},
	}

	for rowIdx, row := range data {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			f.SetCellValue(sheet, cell, val)
		}
	}

	path := filepath.Join("testdata", "decorated_sales_sample.xlsx")
	if err := f.SaveAs(path); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✓ Generated", path)
}
