package repository

import (
	"go-inventory-bom/internal/model"

	"gorm.io/gorm"
)

type CompanyRepository interface {
	FindByCode(code string) (*model.Company, error)
	// SeedDefault returns the default company, creating it on first start.
	SeedDefault(name string) (*model.Company, error)
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db}
}

func (r *companyRepo) FindByCode(code string) (*model.Company, error) {
	var company model.Company
	if err := r.db.Where("code = ?", code).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) SeedDefault(name string) (*model.Company, error) {
	company, err := r.FindByCode(model.DefaultCompanyCode)
	if err == nil {
		return company, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	company = &model.Company{Code: model.DefaultCompanyCode, Name: name}
	company.CreatedBy = "system"
	company.UpdatedBy = "system"
	if err := r.db.Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}
