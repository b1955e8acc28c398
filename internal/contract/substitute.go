package contract

import (
	"strings"
	"time"

	"github.com/danielcasamentos/priceus-sub002/internal/money"
	"github.com/danielcasamentos/priceus-sub002/internal/profile"
)

// SubstitutionInput carries everything placeholder resolution can
// draw from. Per field the priority is client-entered data, then the
// lead snapshot, then empty string.
type SubstitutionInput struct {
	Issuer   *profile.Profile
	Lead     LeadData
	Client   *ClientData
	SignedAt time.Time
}

// Substitute replaces every known {{PLACEHOLDER}} in the template
// body in a single pass of literal find-and-replace. Unknown
// placeholders are left verbatim; substitution never fails.
//
// When the lead snapshot's hide-intermediate-values flag is set, the
// itemized monetary placeholders (subtotal, discount, surcharge,
// adjustment) resolve to empty string and line items render without
// prices. The final total always resolves normally.
func Substitute(body string, in SubstitutionInput) string {
	table := substitutionTable(in)

	pairs := make([]string, 0, len(table)*2)
	for placeholder, value := range table {
		pairs = append(pairs, "{{"+placeholder+"}}", value)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}

func substitutionTable(in SubstitutionInput) map[string]string {
	client := in.Client
	if client == nil {
		client = &ClientData{}
	}

	hide := in.Lead.HideItemValues

	hidable := func(cents int64) string {
		if hide {
			return ""
		}

		return money.FormatBRL(cents)
	}

	table := map[string]string{
		"CLIENT_NAME":     firstNonEmpty(client.FullName, in.Lead.ClientName),
		"CLIENT_DOCUMENT": client.Document,
		"CLIENT_ADDRESS":  client.Address,
		"CLIENT_CITY":     client.City,
		"CLIENT_STATE":    client.State,
		"CLIENT_EMAIL":    in.Lead.ClientEmail,
		"CLIENT_PHONE":    in.Lead.ClientPhone,
		"EVENT_TYPE":      in.Lead.EventType,
		"EVENT_DATE":      eventDate(in.Lead),
		"EVENT_LOCATION":  client.EventLocation,
		"EVENT_TIME":      client.EventTime,
		"ITEMS_LIST":      itemsList(in.Lead.Items, hide),
		"SUBTOTAL":        hidable(in.Lead.Subtotal),
		"DISCOUNT":        hidable(in.Lead.Discount),
		"SURCHARGE":       hidable(in.Lead.Surcharge),
		"ADJUSTMENT":      hidable(in.Lead.Adjustment),
		"TOTAL":           money.FormatBRL(in.Lead.Total),
		"SIGNING_DATE":    in.SignedAt.Format("02/01/2006"),
	}

	if in.Issuer != nil {
		table["BUSINESS_NAME"] = in.Issuer.BusinessName
		table["BUSINESS_OWNER"] = in.Issuer.OwnerName
		table["BUSINESS_DOCUMENT"] = in.Issuer.Document
		table["BUSINESS_PHONE"] = in.Issuer.Phone
		table["BUSINESS_EMAIL"] = in.Issuer.Email
		table["BUSINESS_CITY"] = in.Issuer.City
		table["BUSINESS_STATE"] = in.Issuer.State
	} else {
		table["BUSINESS_NAME"] = ""
		table["BUSINESS_OWNER"] = ""
		table["BUSINESS_DOCUMENT"] = ""
		table["BUSINESS_PHONE"] = ""
		table["BUSINESS_EMAIL"] = ""
		table["BUSINESS_CITY"] = ""
		table["BUSINESS_STATE"] = ""
	}

	return table
}

func itemsList(items []LineItem, hidePrices bool) string {
	if len(items) == 0 {
		return ""
	}

	var sb strings.Builder

	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString("• ")
		sb.WriteString(item.Name)

		if !hidePrices {
			sb.WriteString(" - ")
			sb.WriteString(money.FormatBRL(item.Price))
		}
	}

	return sb.String()
}

func eventDate(lead LeadData) string {
	if lead.EventDate.IsZero() {
		return ""
	}

	d := lead.EventDate

	return d.Time().Format("02/01/2006")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
