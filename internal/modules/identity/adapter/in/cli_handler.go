package in

import (
	"context"

	"dsaboost/internal/modules/identity/dto"
	identityin "dsaboost/internal/modules/identity/port/in"
)

type CLIHandler struct {
	usecase identityin.Usecase
}

func NewCLIHandler(usecase identityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, token string) (dto.SignInOutput, error) {
	return h.usecase.SignIn(ctx, token)
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.SignOut(ctx)
}

func (h CLIHandler) WhoAmI(ctx context.Context) (dto.IdentityOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Preferences(ctx context.Context) (dto.PreferencesOutput, error) {
	current, err := h.usecase.Current(ctx)
	if err != nil {
		return dto.PreferencesOutput{}, err
	}
	return h.usecase.Preferences(ctx, current.UserID)
}

func (h CLIHandler) UpdatePreferences(ctx context.Context, input dto.UpdatePreferencesInput) (dto.PreferencesOutput, error) {
	current, err := h.usecase.Current(ctx)
	if err != nil {
		return dto.PreferencesOutput{}, err
	}
	return h.usecase.UpdatePreferences(ctx, current.UserID, input)
}
