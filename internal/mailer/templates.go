package mailer

import (
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

// Шаблоны писем. Текст и HTML версии собираются отдельно,
// HTML экранируется через html/template.

var tmplFuncs = map[string]any{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

var customerText = texttemplate.Must(texttemplate.New("customer_text").Funcs(tmplFuncs).Parse(`שלום {{.CustomerName}},

תודה רבה על הזמנתך! קיבלנו אותה והיא בטיפול.

סיכום הזמנה:
{{range .Items}}- {{.Name}} (כמות: {{.Quantity}}) - ₪{{money .Price}}
{{end}}{{if .CouponUsed}}
קופון בשימוש: {{.CouponUsed}} ({{.DiscountPct}}% הנחה)
סכום מקורי: ₪{{money .OriginalTotal}}
{{end}}
סך הכל לתשלום: ₪{{money .Total}}

מספר ההזמנה שלך למעקב הוא: {{.OrderRef}}

תודה שבחרת ב-claudeShop!
צוות claudeShop
`))

var customerHTML = template.Must(template.New("customer_html").Funcs(tmplFuncs).Parse(`<div dir="rtl" style="font-family: Arial, sans-serif; text-align: right; line-height: 1.6;">
    <h2>שלום {{.CustomerName}},</h2>
    <p>תודה רבה על הזמנתך! קיבלנו אותה והיא כעת בטיפול.</p>
    <h3>סיכום הזמנה</h3>
    <ul style="list-style-type: none; padding: 0;">
        {{range .Items}}<li>- {{.Name}} (כמות: {{.Quantity}}) - ₪{{money .Price}}</li>
        {{end}}
    </ul>
    {{if .CouponUsed}}<p style="color: #28a745;">
        <strong>קופון בשימוש:</strong> {{.CouponUsed}} ({{.DiscountPct}}% הנחה)
        <br>
        <span style="text-decoration: line-through;">סכום מקורי: ₪{{money .OriginalTotal}}</span>
    </p>{{end}}
    <p style="font-size: 1.1em;"><strong>סך הכל לתשלום: ₪{{money .Total}}</strong></p>
    <p><strong>מספר ההזמנה שלך למעקב הוא:</strong> {{.OrderRef}}</p>
    <hr>
    <p>תודה שבחרת בנו,</p>
    <p>צוות claudeShop</p>
</div>
`))

var adminText = texttemplate.Must(texttemplate.New("admin_text").Funcs(tmplFuncs).Parse(`התקבלה הזמנה חדשה!

פרטי ההזמנה:
מספר הזמנה: {{.OrderRef}}
שעת תשלום: {{.PaymentTime}}

פרטי הלקוח:
שם: {{.CustomerName}}
אימייל: {{.PayerEmail}}
טלפון: {{.PayerPhone}}
אופן מסירה: {{.ShippingMethod}}
כתובת למשלוח: {{.ShippingAddress}}

מוצרים:
{{range .Items}}- {{.Name}} (כמות: {{.Quantity}}) - ₪{{money .Price}}
{{end}}{{if .CouponUsed}}
קופון בשימוש: {{.CouponUsed}} ({{.DiscountPct}}% הנחה)
סכום מקורי: ₪{{money .OriginalTotal}}
{{end}}
סך הכל: ₪{{money .Total}}
`))

var adminHTML = template.Must(template.New("admin_html").Funcs(tmplFuncs).Parse(`<div dir="rtl" style="font-family: Arial, sans-serif; text-align: right; line-height: 1.6;">
    <h2>התקבלה הזמנה חדשה!</h2>

    <h3>פרטי ההזמנה</h3>
    <ul style="list-style-type: none; padding: 0; margin-right: 0; padding-right: 0;">
        <li><strong>מספר הזמנה:</strong> {{.OrderRef}}</li>
        <li><strong>שעת תשלום:</strong> {{.PaymentTime}}</li>
    </ul>

    <h3>פרטי הלקוח</h3>
    <ul style="list-style-type: none; padding: 0; margin-right: 0; padding-right: 0;">
        <li><strong>שם:</strong> {{.CustomerName}}</li>
        <li><strong>אימייל:</strong> {{.PayerEmail}}</li>
        <li><strong>טלפון ליצירת קשר:</strong> {{.PayerPhone}}</li>
        <li><strong>אופן מסירה:</strong> {{.ShippingMethod}}</li>
        <li><strong>כתובת למשלוח:</strong> {{.ShippingAddress}}</li>
    </ul>

    <h3>פירוט המוצרים:</h3>
    <ul style="list-style-type: none; padding: 0; margin-right: 0; padding-right: 0;">
        {{range .Items}}<li>- {{.Name}} (כמות: {{.Quantity}}) - ₪{{money .Price}}</li>
        {{end}}
    </ul>
    {{if .CouponUsed}}<p style="color: #28a745;">
        <strong>קופון בשימוש:</strong> {{.CouponUsed}} ({{.DiscountPct}}% הנחה)
        <br>
        <span style="text-decoration: line-through;">סכום מקורי: ₪{{money .OriginalTotal}}</span>
    </p>{{end}}
    <p style="font-size: 1.1em;"><strong>סך הכל: ₪{{money .Total}}</strong></p>
</div>
`))

func renderCustomerEmail(data emailData) (string, string, error) {
	return renderPair(customerText, customerHTML, data)
}

func renderAdminEmail(data emailData) (string, string, error) {
	return renderPair(adminText, adminHTML, data)
}

func renderPair(text *texttemplate.Template, html *template.Template, data emailData) (string, string, error) {
	var textBuf, htmlBuf strings.Builder
	if err := text.Execute(&textBuf, data); err != nil {
		return "", "", err
	}
	if err := html.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}
	return textBuf.String(), htmlBuf.String(), nil
}
