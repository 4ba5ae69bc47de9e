package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/carcli/internal/gateway"
	"github.com/studiowebux/carcli/internal/types"
	"github.com/studiowebux/carcli/internal/viewstate"
)

// request wraps fn in a cancellable command tracked by m.requests
func (m *Model) request(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	release := m.requests.Track(cancel)
	return func() tea.Msg {
		defer release()
		return fn(ctx)
	}
}

func (m *Model) loginCmd(username, password string) tea.Cmd {
	app := m.app
	return m.request(func(ctx context.Context) tea.Msg {
		return loginResultMsg{err: app.Authenticate(ctx, username, password)}
	})
}

// loadAllCmd refreshes brands, price bounds and the current page
func (m *Model) loadAllCmd(status string) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		return loadedMsg{status: status, err: ctrl.LoadAll(ctx)}
	})
}

func (m *Model) sortCmd(key types.SortKey) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		if err := ctrl.SortBy(ctx, key); err != nil {
			return loadedMsg{err: err}
		}
		q := ctrl.Query()
		return loadedMsg{status: fmt.Sprintf("Sorted by %s %s", q.SortBy, q.SortDir)}
	})
}

func (m *Model) nextPageCmd() tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		moved, err := ctrl.NextPage(ctx)
		if err == nil && !moved {
			return loadedMsg{status: "Already on the last page"}
		}
		return loadedMsg{err: err}
	})
}

func (m *Model) prevPageCmd() tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		moved, err := ctrl.PrevPage(ctx)
		if err == nil && !moved {
			return loadedMsg{status: "Already on the first page"}
		}
		return loadedMsg{err: err}
	})
}

func (m *Model) searchCmd(term string) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		return loadedMsg{err: ctrl.Search(ctx, term)}
	})
}

func (m *Model) applyFiltersCmd(f types.FilterCriteria) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		err := ctrl.ApplyFilters(ctx, f)
		return loadedMsg{status: fmt.Sprintf("%d filter(s) active", f.ActiveCount()), err: err}
	})
}

func (m *Model) resetFiltersCmd() tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		return loadedMsg{status: "Filters reset", err: ctrl.ResetFilters(ctx)}
	})
}

func (m *Model) pageSizeCmd(n int) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		return loadedMsg{status: fmt.Sprintf("Page size %d", n), err: ctrl.SetPageSize(ctx, n)}
	})
}

// refreshBounds recomputes the price gradient after a mutation. Failures
// keep the previous bounds.
func refreshBounds(ctx context.Context, ctrl *viewstate.Controller) {
	_ = ctrl.LoadPriceBounds(ctx)
}

func (m *Model) createCarCmd(draft types.CarDraft, imagePath string) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		upload, err := openUpload(imagePath)
		if err != nil {
			return mutationMsg{err: err}
		}
		created, err := ctrl.CreateCar(ctx, draft, upload)
		if created == nil {
			return mutationMsg{err: mutationError(err)}
		}
		refreshBounds(ctx, ctrl)
		status := fmt.Sprintf("Created %s %s", created.Brand.Name, created.Specification)
		if err != nil {
			status += " (refresh failed: " + err.Error() + ")"
		}
		return mutationMsg{status: status}
	})
}

func (m *Model) updateCarCmd(carID int64, draft types.CarDraft, imagePath string) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		// the page may have been refetched since the form opened
		index, ok := ctrl.IndexOf(carID)
		if !ok {
			return mutationMsg{err: errCarGone}
		}
		upload, err := openUpload(imagePath)
		if err != nil {
			return mutationMsg{err: err}
		}
		updated, err := ctrl.UpdateCar(ctx, index, draft, upload)
		if updated == nil {
			return mutationMsg{err: mutationError(err)}
		}
		refreshBounds(ctx, ctrl)
		status := fmt.Sprintf("Updated %s %s", updated.Brand.Name, updated.Specification)
		if err != nil {
			status += " (refresh failed: " + err.Error() + ")"
		}
		return mutationMsg{status: status}
	})
}

func (m *Model) deleteCarCmd(car types.Car) tea.Cmd {
	ctrl := m.ctrl
	label := car.Brand.Name + " " + car.Specification
	return m.request(func(ctx context.Context) tea.Msg {
		index, ok := ctrl.IndexOf(car.IDValue())
		if !ok {
			return mutationMsg{err: errCarGone}
		}
		if err := ctrl.DeleteCar(ctx, index); err != nil {
			return mutationMsg{err: mutationError(err)}
		}
		refreshBounds(ctx, ctrl)
		return mutationMsg{status: "Deleted " + label}
	})
}

func openUpload(path string) (*gateway.Upload, error) {
	if path == "" {
		return nil, nil
	}
	return gateway.OpenUpload(path)
}

func (m *Model) loadBrandsCmd() tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		return brandsMsg{err: ctrl.LoadBrands(ctx)}
	})
}

func (m *Model) addBrandCmd(name string) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		b, err := ctrl.AddBrand(ctx, name)
		if err != nil {
			return brandsMsg{err: err}
		}
		return brandsMsg{status: "Added brand " + b.Name}
	})
}

func (m *Model) renameBrandCmd(id int64, name string) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		b, err := ctrl.RenameBrand(ctx, id, name)
		if err != nil {
			return brandsMsg{err: err}
		}
		// car rows carry the brand name
		if err := ctrl.Load(ctx); err != nil {
			return brandsMsg{err: err}
		}
		return brandsMsg{status: "Renamed brand to " + b.Name}
	})
}

func (m *Model) removeBrandCmd(id int64, name string) tea.Cmd {
	ctrl := m.ctrl
	return m.request(func(ctx context.Context) tea.Msg {
		if err := ctrl.RemoveBrand(ctx, id); err != nil {
			return brandsMsg{err: err}
		}
		return brandsMsg{status: "Deleted brand " + name}
	})
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	hist := m.app.History
	return func() tea.Msg {
		entries, err := hist.Recent(HistoryModalLimit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (m *Model) clearHistoryCmd() tea.Cmd {
	hist := m.app.History
	return func() tea.Msg {
		if err := hist.Clear(); err != nil {
			return historyLoadedMsg{err: err}
		}
		return historyLoadedMsg{}
	}
}

// copyImageURL puts the selected car's image URL on the clipboard
func (m *Model) copyImageURL() tea.Cmd {
	car, ok := m.ctrl.CarAt(m.cursor)
	if !ok {
		return nil
	}
	filename := car.ImageFilename()
	if filename == "" {
		return m.setErrorMessage("This car has no image")
	}

	url := m.app.Gateway.ImageURL(filename)
	if err := clipboard.WriteAll(url); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to copy: %v", err))
	}
	return m.setStatusMessage("Copied " + url)
}

func (m *Model) addToCart() tea.Cmd {
	car, ok := m.ctrl.CarAt(m.cursor)
	if !ok {
		return nil
	}
	if err := m.ctrl.AddToCart(m.cursor); err != nil {
		return m.setErrorMessage(err.Error())
	}
	cart := m.ctrl.Cart()
	return m.setStatusMessage(fmt.Sprintf("Added %s %s to cart (%d items, %s)",
		car.Brand.Name, car.Specification, cart.Len(), formatPrice(cart.Total())))
}

func (m *Model) logout() tea.Cmd {
	m.requests.CancelAll()
	if err := m.app.Session.Clear(); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.ctrl = m.app.Controller()
	m.cursor = 0
	m.mode = ModeLogin
	m.focusLogin(0)
	return m.setStatusMessage("Logged out")
}

// errMutationBusy is shown instead of viewstate.ErrBusy
var errMutationBusy = errors.New("another change is still being saved")

// errCarGone is returned when the car being changed left the page
var errCarGone = errors.New("that car is no longer on this page; reload and try again")

func mutationError(err error) error {
	if errors.Is(err, viewstate.ErrBusy) {
		return errMutationBusy
	}
	return err
}
